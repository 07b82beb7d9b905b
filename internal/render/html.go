package render

import (
	"strings"

	"golang.org/x/net/html"
)

// parseBody parses an HTML document or fragment and returns its body node.
func parseBody(doc string) (*html.Node, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return body, nil
}

// renderNode serializes a node back to HTML.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

// renderNodes serializes a run of sibling nodes.
func renderNodes(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		_ = html.Render(&sb, n)
	}
	return sb.String()
}

// nodeText concatenates all visible text content under a node.
// Style and script bodies are not visible text.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "style" || n.Data == "script") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// TextContent returns the concatenated text of an HTML fragment with all
// markup stripped. Parse failures yield the input unchanged.
func TextContent(doc string) string {
	body, err := parseBody(doc)
	if err != nil || body == nil {
		return doc
	}
	return nodeText(body)
}

// hasClass reports whether an element node carries the given CSS class.
func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// findAllClass collects every node with the given class, in document order.
func findAllClass(root *html.Node, class string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if hasClass(n, class) {
			found = append(found, n)
			return // containers do not nest
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// FirstHeading returns the text of the first h1, h2 or h3 in a fragment,
// or empty string if none is present.
func FirstHeading(fragment string) string {
	body, err := parseBody(fragment)
	if err != nil || body == nil {
		return ""
	}
	var heading string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if heading != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3":
				heading = strings.TrimSpace(nodeText(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)
	return heading
}

func isHeading(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2")
}

// textLen measures the visible text length of a node, ignoring markup.
func textLen(n *html.Node) int {
	return len(nodeText(n))
}
