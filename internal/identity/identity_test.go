package identity

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rosterlink/internal/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const leaderboardPage = `<html><body>
<table>
  <tr><td><a href="/acm/contest/profile/42"> alice </a></td></tr>
  <tr><td><a href="https://ac.nowcoder.com/acm/contest/profile/7?from=rank" title="bob"></a></td></tr>
  <tr><td><a href="/acm/contest/profile/9"><span> carol </span><img src="c.png"></a></td></tr>
  <tr><td><a href="/acm/contest/profile/11"><img src="d.png"></a></td></tr>
  <tr><td><a href="/acm/contest/rank/11">dave</a></td></tr>
  <tr><td><a href="/acm/contest/profile/abc">erin</a></td></tr>
</table>
</body></html>`

func writeDoc(t *testing.T, dir, name, body string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestExtractNickname(t *testing.T) {
	testCases := []struct {
		html     string
		expected string
	}{
		{html: `<a href="#"> alice </a>`, expected: "alice"},
		{html: `<a href="#" title=" bob "></a>`, expected: "bob"},
		{html: `<a href="#" title="ignored">carol</a>`, expected: "carol"},
		{html: `<a href="#"><b> da </b><i>ve</i></a>`, expected: "dave"},
		{html: `<a href="#"><img src="x.png"></a>`, expected: ""},
	}

	for _, test := range testCases {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(test.html))
		require.NoError(t, err)
		require.Equal(t, test.expected, ExtractNickname(doc.Find("a").First()), test.html)
	}
}

func TestParseDocument(t *testing.T) {
	index, links, err := ParseDocument(context.Background(), strings.NewReader(leaderboardPage))
	require.NoError(t, err)
	require.Equal(t, 4, links)

	expected := Index{
		"alice": "42",
		"bob":   "7",
		"carol": "9",
	}
	if diff := cmp.Diff(expected, index); diff != "" {
		t.Fatal(diff)
	}
}

func TestBuildLaterDocumentWins(t *testing.T) {
	dir := t.TempDir()
	first := writeDoc(t, dir, "rank_1.html", `<a href="/acm/contest/profile/1">alice</a><a href="/acm/contest/profile/2">bob</a>`)
	second := writeDoc(t, dir, "rank_2.html", `<a href="/acm/contest/profile/3">alice</a>`)

	rec := &telemetry.Recorder{}
	index, reports, err := Build(context.Background(), []string{first, second}, WithTelemetry(rec))
	require.NoError(t, err)
	require.Equal(t, Index{"alice": "3", "bob": "2"}, index)

	require.Len(t, reports, 2)
	require.Equal(t, 2, reports[0].Pairs)
	require.Equal(t, 1, reports[1].Pairs)

	index, _, err = Build(context.Background(), []string{second, first}, WithTelemetry(rec))
	require.NoError(t, err)
	require.Equal(t, "1", index["alice"])
}

func TestBuildSkipsMissingDocuments(t *testing.T) {
	dir := t.TempDir()
	present := writeDoc(t, dir, "rank.html", leaderboardPage)
	missing := filepath.Join(dir, "missing.html")

	rec := &telemetry.Recorder{}
	index, reports, err := Build(context.Background(), []string{missing, present}, WithTelemetry(rec))
	require.NoError(t, err)
	require.Equal(t, "42", index["alice"])

	require.Len(t, reports, 2)
	require.False(t, reports[0].OK())
	require.ErrorIs(t, reports[0].Err, os.ErrNotExist)
	require.True(t, reports[1].OK())
	require.Len(t, rec.Find("warning", report_document_read), 1)
}

func TestBuildWithOpener(t *testing.T) {
	pages := map[string]string{
		"mem://rank_1": `<a href="/acm/contest/profile/1">alice</a>`,
		"mem://rank_2": `<a href="/acm/contest/profile/2">bob</a>`,
	}
	errLocked := errors.New("locked")
	open := func(path string) (io.ReadCloser, error) {
		body, ok := pages[path]
		if !ok {
			return nil, errLocked
		}
		return io.NopCloser(strings.NewReader(body)), nil
	}

	rec := &telemetry.Recorder{}
	index, reports, err := Build(
		context.Background(),
		[]string{"mem://rank_1", "mem://locked", "mem://rank_2"},
		WithTelemetry(rec),
		WithOpener(open),
	)
	require.NoError(t, err)
	require.Equal(t, Index{"alice": "1", "bob": "2"}, index)
	require.ErrorIs(t, reports[1].Err, errLocked)
	require.Len(t, rec.Find("warning", report_document_read), 1)
}

func TestBuildFailures(t *testing.T) {
	rec := &telemetry.Recorder{}

	_, _, err := Build(context.Background(), nil, WithTelemetry(rec))
	require.ErrorIs(t, err, ErrNoDocuments)

	missing := filepath.Join(t.TempDir(), "missing.html")
	_, reports, err := Build(context.Background(), []string{missing}, WithTelemetry(rec))
	require.ErrorIs(t, err, ErrNoDocumentsParsed)
	require.Len(t, reports, 1)
}

func TestMerge(t *testing.T) {
	dst := Index{"a": "1", "b": "2"}
	Merge(dst, Index{"b": "20", "c": "3"})
	require.Equal(t, Index{"a": "1", "b": "20", "c": "3"}, dst)
}
