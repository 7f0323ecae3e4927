package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestGetStrippedText(t *testing.T) {
	testCases := []struct {
		html     string
		expected string
	}{
		{html: `<a> alice </a>`, expected: "alice"},
		{html: `<a> al <b> ice </b>
		</a>`, expected: "alice"},
		{html: `<a><img src="x.png"></a>`, expected: ""},
		{html: `<a>  </a>`, expected: ""},
		{html: `<a>bob <span>the</span> builder</a>`, expected: "bobthebuilder"},
	}

	for _, test := range testCases {
		doc := parse(t, test.html)
		require.Equal(t, test.expected, SelectionStrippedText(doc.Find("a")), test.html)
	}
}
