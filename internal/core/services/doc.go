// Package services implements the core behaviours behind the driving ports:
// citation reconciliation, the content acquisition pipeline, and the search
// orchestrator that joins them.
package services
