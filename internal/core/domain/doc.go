// Package domain contains the core data model for grounded search:
// citations, grounding metadata, scraped content, batch records and OAuth
// credentials. It has no dependencies outside the standard library.
package domain
