// Package reconcile attaches identifiers to roster rows through the identity index.
package reconcile

import (
	"strings"

	"rosterlink/internal/identity"
	"rosterlink/internal/roster"
	"rosterlink/internal/telemetry"
	"rosterlink/lib/textutil"
)

const (
	report_rows_matched = "reconciler.rows-matched"
	report_row_miss     = "reconciler.row-miss"
)

// Normalizer rewrites a raw nickname into a candidate index key.
type Normalizer func(string) string

// DefaultNormalizers tries the trimmed nickname first, then the nickname with
// every whitespace and invisible rune removed.
var DefaultNormalizers = []Normalizer{
	strings.TrimSpace,
	textutil.StripWhitespace,
}

// Lookup applies each normalizer in order to raw and returns the identifier of
// the first candidate that is present in the index.
func Lookup(index identity.Index, raw string, normalizers ...Normalizer) (string, bool) {
	for _, normalize := range normalizers {
		id, ok := index.Lookup(normalize(raw))
		if ok {
			return id, true
		}
	}
	return "", false
}

// ReconciledRow is a roster row with its identifier, an empty Identifier
// means no match was found.
type ReconciledRow struct {
	Identifier string
	Nickname   string
	RealName   string
	School     string
}

func (r ReconciledRow) Matched() bool {
	return r.Identifier != ""
}

// Result holds the rows in roster order, the nicknames that could not be
// matched (one entry per failing row) and the deduplicated identifiers in
// order of first match.
type Result struct {
	Rows        []ReconciledRow
	Unmatched   []string
	Identifiers []string
}

func (r Result) Total() int {
	return len(r.Rows)
}

func (r Result) Matched() int {
	return r.Total() - len(r.Unmatched)
}

// MatchRate is Matched/Total, 0 for an empty roster.
func (r Result) MatchRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.Matched()) / float64(r.Total())
}

type reconcileCfg struct {
	tel         telemetry.API
	normalizers []Normalizer
}

type Option func(cfg *reconcileCfg)

func WithTelemetry(tel telemetry.API) Option {
	return func(cfg *reconcileCfg) {
		cfg.tel = tel
	}
}

// WithNormalizers appends extra normalizers after the default ones.
func WithNormalizers(normalizers ...Normalizer) Option {
	return func(cfg *reconcileCfg) {
		cfg.normalizers = append(cfg.normalizers, normalizers...)
	}
}

// Reconcile matches every row against the index, rows keep their order.
func Reconcile(rows []roster.Row, index identity.Index, opts ...Option) Result {
	cfg := reconcileCfg{
		normalizers: append([]Normalizer{}, DefaultNormalizers...),
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("reconcile", cfg.tel)

	result := Result{
		Rows: make([]ReconciledRow, 0, len(rows)),
	}
	seen := make(map[string]struct{})

	for _, row := range rows {
		id, ok := Lookup(index, row.Nickname, cfg.normalizers...)
		result.Rows = append(result.Rows, ReconciledRow{
			Identifier: id,
			Nickname:   row.Nickname,
			RealName:   row.RealName,
			School:     row.School,
		})

		if !ok {
			nickname := strings.TrimSpace(row.Nickname)
			result.Unmatched = append(result.Unmatched, nickname)
			tel.ReportDebug(report_row_miss, textutil.CleanText(nickname))
			continue
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			result.Identifiers = append(result.Identifiers, id)
		}
	}

	tel.ReportProgress(report_rows_matched, result.Matched(), result.Total())
	return result
}
