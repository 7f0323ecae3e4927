// Package identity builds the nickname to identifier index out of archived
// leaderboard pages.
package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"rosterlink/internal/telemetry"
	"rosterlink/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("rosterlink/identity")

const (
	report_document_read  = "builder.document-read"
	report_document_parse = "builder.document-parse"
	report_document_pairs = "builder.document-pairs"
	report_index_size     = "builder.index-size"
)

var (
	ErrNoDocuments       = errors.New("no html documents configured")
	ErrNoDocumentsParsed = errors.New("none of the html documents could be parsed")
)

// ProfilePattern matches the profile links of a leaderboard, the first group
// is the identifier.
var ProfilePattern = regexp.MustCompile(`/acm/contest/profile/(\d+)`)

// Index maps a nickname, exactly as it was scraped, to its identifier.
// Identifiers are kept as text.
type Index map[string]string

// Merge copies every pair of src into dst. A nickname present in both keeps
// the identifier of src: the later source wins and collisions are not errors.
func Merge(dst, src Index) {
	for nickname, id := range src {
		dst[nickname] = id
	}
}

// Lookup returns the identifier of an exact nickname.
func (i Index) Lookup(nickname string) (string, bool) {
	id, ok := i[nickname]
	return id, ok
}

// Nicknames returns every key of the index.
func (i Index) Nicknames() []string {
	out := make([]string, 0, len(i))
	for nickname := range i {
		out = append(out, nickname)
	}
	return out
}

// ExtractNickname pulls a nickname out of a profile anchor, trying in order
// the anchor's own text, its title attribute and the text of its children.
func ExtractNickname(anchor *goquery.Selection) string {
	nickname := htmlutil.SelectionStrippedText(anchor)
	if nickname != "" {
		return nickname
	}

	nickname = strings.TrimSpace(anchor.AttrOr("title", ""))
	if nickname != "" {
		return nickname
	}

	anchor.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		nickname = htmlutil.SelectionStrippedText(child)
		return nickname == ""
	})
	return nickname
}

// ParseDocument extracts every (nickname, identifier) pair of a single document,
// it also returns the amount of profile anchors found.
func ParseDocument(ctx context.Context, r io.Reader) (Index, int, error) {
	_, span := tracer.Start(ctx, "ParseDocument")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, 0, err
	}

	partial := Index{}
	links := 0
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		groups := ProfilePattern.FindStringSubmatch(anchor.AttrOr("href", ""))
		if len(groups) < 2 {
			return
		}
		links++

		nickname := ExtractNickname(anchor)
		if nickname == "" {
			return
		}
		partial[nickname] = groups[1]
	})

	span.SetAttributes(
		attribute.Int("links", links),
		attribute.Int("pairs", len(partial)),
	)
	return partial, links, nil
}

// SourceReport describes what a single document contributed to the index.
type SourceReport struct {
	Path  string
	Links int
	Pairs int
	Err   error
}

func (r SourceReport) OK() bool {
	return r.Err == nil
}

type builderCfg struct {
	tel  telemetry.API
	open func(path string) (io.ReadCloser, error)
}

type BuilderOption func(cfg *builderCfg)

func WithTelemetry(tel telemetry.API) BuilderOption {
	return func(cfg *builderCfg) {
		cfg.tel = tel
	}
}

// WithOpener replaces how document paths are opened.
func WithOpener(open func(path string) (io.ReadCloser, error)) BuilderOption {
	return func(cfg *builderCfg) {
		cfg.open = open
	}
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Build parses every document in order and merges their pairs into one index,
// later documents overwrite earlier ones on a nickname collision.
//
// A document that is missing or fails to parse is reported and skipped, Build
// only fails when paths is empty or when no document could be parsed at all.
func Build(ctx context.Context, paths []string, opts ...BuilderOption) (Index, []SourceReport, error) {
	cfg := builderCfg{open: openFile}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("identity", cfg.tel)

	ctx, span := tracer.Start(ctx, "Build")
	defer span.End()

	if len(paths) == 0 {
		span.SetStatus(codes.Error, ErrNoDocuments.Error())
		return nil, nil, ErrNoDocuments
	}

	index := Index{}
	reports := make([]SourceReport, 0, len(paths))
	parsed := 0

	for _, path := range paths {
		report := buildOne(ctx, tel, cfg.open, path, index)
		if report.OK() {
			parsed++
		}
		reports = append(reports, report)
	}

	tel.ReportCount(report_index_size, int64(len(index)))
	if parsed == 0 {
		span.SetStatus(codes.Error, ErrNoDocumentsParsed.Error())
		return nil, reports, ErrNoDocumentsParsed
	}
	return index, reports, nil
}

func buildOne(ctx context.Context, tel telemetry.API, open func(string) (io.ReadCloser, error), path string, index Index) SourceReport {
	report := SourceReport{Path: path}

	f, err := open(path)
	if err != nil {
		report.Err = fmt.Errorf("read %s: %w", path, err)
		tel.ReportWarning(report_document_read, path, err)
		return report
	}
	defer f.Close()

	partial, links, err := ParseDocument(ctx, f)
	if err != nil {
		report.Err = fmt.Errorf("parse %s: %w", path, err)
		tel.ReportWarning(report_document_parse, path, err)
		return report
	}

	Merge(index, partial)
	report.Links = links
	report.Pairs = len(partial)
	tel.ReportProgress(report_document_pairs, path, links, len(partial))
	return report
}
