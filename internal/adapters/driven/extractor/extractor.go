// Package extractor turns fetched HTML into readable article text: a DOM
// walk locates the content subtree and title, and rendering reduces that
// subtree to plain text.
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/k3a/html2text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
)

// minContentLength is the least text a subtree must hold to count as
// extractable article content.
const minContentLength = 25

// junkAtoms are pruned from the content subtree before rendering.
var junkAtoms = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Form:     true,
	atom.Iframe:   true,
}

// contentHints mark container ids/classes that usually hold the article body.
var contentHints = []string{"content", "article", "post", "main", "body"}

// Ensure Extractor implements the interface.
var _ driven.ArticleExtractor = (*Extractor)(nil)

// Extractor is a stateless readable-article extractor.
type Extractor struct{}

// New creates a new article extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract locates the readable article in an HTML document. Returns
// domain.ErrNoContent when no subtree holds enough text.
func (e *Extractor) Extract(content []byte, sourceURL string) (*driven.Article, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	title := extractTitle(doc, sourceURL)

	root := findContentNode(doc)
	if root == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoContent, sourceURL)
	}
	prune(root)
	if len(strings.TrimSpace(collectText(root))) < minContentLength {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoContent, sourceURL)
	}

	return &driven.Article{Title: title, Root: root}, nil
}

// Render converts an extracted article tree to plain text.
func (e *Extractor) Render(a *driven.Article) (string, error) {
	if a == nil || a.Root == nil {
		return "", domain.ErrNoContent
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, a.Root); err != nil {
		return "", fmt.Errorf("rendering article tree: %w", err)
	}

	text := html2text.HTML2Text(buf.String())
	return tidyText(text), nil
}

// extractTitle prefers the <title> tag, then the first <h1>, then a cleaned
// filename from the URL path.
func extractTitle(doc *html.Node, sourceURL string) string {
	if t := textOfFirst(doc, atom.Title); t != "" {
		return t
	}
	if t := textOfFirst(doc, atom.H1); t != "" {
		return t
	}

	u, err := url.Parse(sourceURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	name := path.Base(u.Path)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// findContentNode picks the best content container: <article>, then <main>,
// then the largest hinted container, then <body>.
func findContentNode(doc *html.Node) *html.Node {
	if n := firstElement(doc, atom.Article); n != nil {
		return n
	}
	if n := firstElement(doc, atom.Main); n != nil {
		return n
	}

	var best *html.Node
	bestLen := 0
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Div {
			return
		}
		if !hasContentHint(n) {
			return
		}
		if l := len(collectText(n)); l > bestLen {
			best, bestLen = n, l
		}
	})
	if best != nil {
		return best
	}

	return firstElement(doc, atom.Body)
}

// hasContentHint reports whether the node's id or class names a content
// container.
func hasContentHint(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "id" && attr.Key != "class" {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, hint := range contentHints {
			if strings.Contains(val, hint) {
				return true
			}
		}
	}
	return false
}

// prune removes junk elements from the subtree in place.
func prune(n *html.Node) {
	var next *html.Node
	for child := n.FirstChild; child != nil; child = next {
		next = child.NextSibling
		if child.Type == html.ElementNode && junkAtoms[child.DataAtom] {
			n.RemoveChild(child)
			continue
		}
		prune(child)
	}
}

// collectText concatenates the text nodes under n.
func collectText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
	})
	return b.String()
}

// textOfFirst returns the trimmed text of the first element with the given
// atom, or "".
func textOfFirst(doc *html.Node, a atom.Atom) string {
	n := firstElement(doc, a)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(collectText(n))
}

// firstElement finds the first element node with the given atom.
func firstElement(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(node *html.Node) {
		if found == nil && node.Type == html.ElementNode && node.DataAtom == a {
			found = node
		}
	})
	return found
}

// walk visits n and all its descendants in document order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, fn)
	}
}

// tidyText trims lines and collapses runs of blank lines.
func tidyText(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
