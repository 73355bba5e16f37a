package ingest

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true,
	atom.H2: true,
	atom.H3: true,
	atom.H4: true,
	atom.H5: true,
	atom.H6: true,
}

var strippedAtoms = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Meta:   true,
	atom.Link:   true,
}

var blockAtoms = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

func parseDocument(data []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(data))
}

// findBody returns the <body> element of a parsed document. html.Parse always
// synthesizes one, but fall back to the root to be safe.
func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	walkNodes(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return doc
	}
	return body
}

// walkNodes visits n and its descendants in document order. Returning false
// from fn stops the walk.
func walkNodes(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !walkNodes(child, fn) {
			return false
		}
	}
	return true
}

// collectNodes gathers descendants of n matching the predicate. The result is
// safe to detach afterwards.
func collectNodes(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var nodes []*html.Node
	walkNodes(n, func(node *html.Node) bool {
		if match(node) {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

func detachNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// nodeText renders the plain text of a node tree. Block-level elements insert
// line breaks; script and style content is skipped.
func nodeText(n *html.Node) string {
	var b strings.Builder
	writeNodeText(&b, n)
	return strings.TrimSpace(b.String())
}

func writeNodeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeNodeText(b, child)
	}
	if n.Type == html.ElementNode && blockAtoms[n.DataAtom] {
		b.WriteByte('\n')
	}
}

// renderChildren serializes the children of n back to markup.
func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// attrContainsAny reports whether the node's id or class attribute contains
// one of the markers, case-insensitively.
func attrContainsAny(n *html.Node, markers []string) bool {
	for _, key := range []string{"id", "class"} {
		value := strings.ToLower(attrValue(n, key))
		if value == "" {
			continue
		}
		for _, marker := range markers {
			if strings.Contains(value, marker) {
				return true
			}
		}
	}
	return false
}

// nonEmptyLines splits text into trimmed non-empty lines.
func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
