package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetStrippedText trims every text node under node on its own and joins the
// non-empty pieces without a separator, so "<a> al <b>ice </b></a>" yields "alice".
func GetStrippedText(node *html.Node) string {
	var buffer bytes.Buffer
	getStrippedTextRecursive(node, &buffer)
	return buffer.String()
}

func getStrippedTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(strings.TrimSpace(node.Data))
		return
	}
	child := node.FirstChild
	for child != nil {
		getStrippedTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// SelectionStrippedText is GetStrippedText over every node of a selection.
func SelectionStrippedText(sel *goquery.Selection) string {
	var out strings.Builder
	for _, n := range sel.Nodes {
		out.WriteString(GetStrippedText(n))
	}
	return out.String()
}
