package render

import (
	"fmt"
	stdhtml "html"
	"strings"

	"golang.org/x/net/html"

	"github.com/pavelanni/lessonpress/internal/model"
)

const (
	// pageBreakClass marks an explicit, authoritative page boundary.
	// Markers are honored at any nesting depth.
	pageBreakClass = "page-break"

	// singlePageThreshold is the text length below which a document is
	// returned as a single page, avoiding spurious pagination of short
	// content. Character counts are a deliberate approximation: there is
	// no layout engine here to measure real page overflow.
	singlePageThreshold = 3200

	// pageCharBudget is the greedy per-page text budget when splitting on
	// section boundaries.
	pageCharBudget = 3800
)

// Paginator splits a rendered document into print-sized pages and wraps
// each in the page shell (brand header, footer). Pure and reentrant.
type Paginator struct {
	BrandName  string
	FooterText string
}

// Paginate splits a rendered HTML document into an ordered page sequence.
// It always returns at least one page; page order follows input order and
// every piece of content lands on exactly one page.
func (p *Paginator) Paginate(doc string) []model.Page {
	body, err := parseBody(doc)
	if err != nil || body == nil {
		return []model.Page{p.shell(0, doc)}
	}

	nodes, preamble := contentRun(body)

	if fragments := splitOnBreaks(nodes, preamble); fragments != nil {
		return p.shellAll(fragments)
	}

	if textLen(body) <= singlePageThreshold {
		return []model.Page{p.shell(0, doc)}
	}

	sections := sectionize(nodes)
	fragments := packSections(sections, preamble)
	return p.shellAll(fragments)
}

// contentRun flattens the body into the node run that gets paginated.
// Templates wrap their content in a div.document; leading style elements
// form a preamble repeated on every page so fragments stay self-styled.
// The document container is unwrapped in place, so siblings before or after
// it stay part of the run and land on a page like everything else.
func contentRun(body *html.Node) ([]*html.Node, string) {
	var pre []*html.Node
	var nodes []*html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case hasClass(c, "document"):
			nodes = append(nodes, elementRun(c)...)
		case c.Type == html.ElementNode && c.Data == "style" && len(nodes) == 0:
			pre = append(pre, c)
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" && len(nodes) == 0:
			// whitespace between preamble styles, not content
		default:
			nodes = append(nodes, c)
		}
	}
	return nodes, renderNodes(pre)
}

// elementRun returns all child nodes of a scope node.
func elementRun(scope *html.Node) []*html.Node {
	var nodes []*html.Node
	for c := scope.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return nodes
}

// splitOnBreaks splits strictly on explicit page-break markers, however
// deeply nested. The marker itself is dropped; N markers always yield N+1
// fragments. Returns nil when no marker is present.
func splitOnBreaks(nodes []*html.Node, preamble string) []string {
	hasBreak := false
	for _, n := range nodes {
		if hasClass(n, pageBreakClass) || containsBreak(n) {
			hasBreak = true
			break
		}
	}
	if !hasBreak {
		return nil
	}

	raw := breakSplit(nodes)
	fragments := make([]string, len(raw))
	for i, f := range raw {
		fragments[i] = preamble + f
	}
	return fragments
}

// breakSplit renders a node run into fragments separated at every marker.
// An element holding a nested marker is closed before the boundary and
// reopened after it, so both fragments remain well-formed.
func breakSplit(nodes []*html.Node) []string {
	fragments := []string{""}
	for _, n := range nodes {
		switch {
		case hasClass(n, pageBreakClass):
			fragments = append(fragments, "")
		case n.Type == html.ElementNode && containsBreak(n):
			inner := breakSplit(elementRun(n))
			open, closing := elementTags(n)
			fragments[len(fragments)-1] += open + inner[0] + closing
			for _, f := range inner[1:] {
				fragments = append(fragments, open+f+closing)
			}
		default:
			fragments[len(fragments)-1] += renderNode(n)
		}
	}
	return fragments
}

// containsBreak reports whether any descendant carries the marker class.
func containsBreak(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasClass(c, pageBreakClass) || containsBreak(c) {
			return true
		}
	}
	return false
}

// elementTags builds the open and close tags of an element, attributes
// included, for reopening it across a fragment boundary.
func elementTags(n *html.Node) (string, string) {
	var sb strings.Builder
	sb.WriteString("<" + n.Data)
	for _, a := range n.Attr {
		fmt.Fprintf(&sb, ` %s="%s"`, a.Key, stdhtml.EscapeString(a.Val))
	}
	sb.WriteString(">")
	return sb.String(), "</" + n.Data + ">"
}

// sectionize groups nodes into sections, each starting at an h1/h2. Content
// before the first heading forms a leading section of its own.
func sectionize(nodes []*html.Node) [][]*html.Node {
	var sections [][]*html.Node
	var current []*html.Node
	for _, n := range nodes {
		if isHeading(n) && len(current) > 0 {
			sections = append(sections, current)
			current = nil
		}
		current = append(current, n)
	}
	if len(current) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// packSections greedily accumulates sections into pages up to the character
// budget. A section larger than the budget gets a page of its own rather
// than being split mid-section.
func packSections(sections [][]*html.Node, preamble string) []string {
	var fragments []string
	var current []*html.Node
	used := 0
	for _, sec := range sections {
		secLen := 0
		for _, n := range sec {
			secLen += textLen(n)
		}
		if len(current) > 0 && used+secLen > pageCharBudget {
			fragments = append(fragments, preamble+renderNodes(current))
			current = nil
			used = 0
		}
		current = append(current, sec...)
		used += secLen
	}
	if len(current) > 0 {
		fragments = append(fragments, preamble+renderNodes(current))
	}
	if len(fragments) == 0 {
		fragments = []string{preamble}
	}
	return fragments
}

func (p *Paginator) shellAll(fragments []string) []model.Page {
	pages := make([]model.Page, len(fragments))
	for i, f := range fragments {
		pages[i] = p.shell(i, f)
	}
	return pages
}

// shell wraps a fragment in the page chrome. Page numbering is the caller's
// concern; only branding is embedded here.
func (p *Paginator) shell(index int, fragment string) model.Page {
	class := "subsequent-page"
	first := index == 0
	if first {
		class = "first-page"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="page %s">`, class)
	fmt.Fprintf(&sb, `<header class="page-header">%s</header>`, stdhtml.EscapeString(p.BrandName))
	sb.WriteString(`<main class="page-content">`)
	sb.WriteString(fragment)
	sb.WriteString(`</main>`)
	fmt.Fprintf(&sb, `<footer class="page-footer">%s</footer>`, stdhtml.EscapeString(p.FooterText))
	sb.WriteString(`</div>`)
	return model.Page{Index: index, First: first, HTML: sb.String()}
}
