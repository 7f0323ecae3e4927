package cmd

import (
	"fmt"
	"os"

	"rosterlink/internal/avatar"
	"rosterlink/internal/pipeline"
	"rosterlink/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	previewRows      = 5
	previewUnmatched = 10
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printResolve(report pipeline.ResolveReport) {
	result := report.Result

	t := newTable()
	t.SetTitle("Resolve")
	t.AppendRows([]table.Row{
		{"Documents parsed", fmt.Sprintf("%d / %d", report.ParsedSources(), len(report.Sources))},
		{"Index size", report.IndexSize},
		{"Roster rows", result.Total()},
		{"Matched", result.Matched()},
		{"Match rate", fmt.Sprintf("%.1f%%", result.MatchRate()*100)},
		{"Identifiers", len(result.Identifiers)},
	})
	t.Render()

	if len(result.Rows) > 0 {
		preview := newTable()
		preview.SetTitle("Preview")
		preview.AppendHeader(table.Row{"Identifier", "Nickname", "Real name", "School"})
		for i, row := range result.Rows {
			if i >= previewRows {
				break
			}
			preview.AppendRow(table.Row{
				row.Identifier,
				textutil.CleanText(row.Nickname),
				textutil.CleanText(row.RealName),
				textutil.CleanText(row.School),
			})
		}
		preview.Render()
	}

	if len(result.Unmatched) > 0 {
		unmatched := newTable()
		unmatched.SetTitle(fmt.Sprintf("Unmatched (%d)", len(result.Unmatched)))
		for i, nickname := range result.Unmatched {
			if i >= previewUnmatched {
				unmatched.AppendFooter(table.Row{fmt.Sprintf("... see %s", report.Paths.Unmatched)})
				break
			}
			unmatched.AppendRow(table.Row{textutil.CleanText(nickname)})
		}
		unmatched.Render()
	}

	if len(report.Suggestions) > 0 {
		suggestions := newTable()
		suggestions.SetTitle("Possible matches")
		suggestions.AppendHeader(table.Row{"Nickname", "Candidate", "Identifier", "Similarity"})
		for _, s := range report.Suggestions {
			suggestions.AppendRow(table.Row{textutil.CleanText(s.Nickname), textutil.CleanText(s.Candidate), s.Identifier, fmt.Sprintf("%.3f", s.Similarity)})
		}
		suggestions.Render()
	}

	if report.ArtifactErr != nil {
		fmt.Fprintln(os.Stderr, "some outputs could not be written:", report.ArtifactErr)
	}
}

func printAvatars(summary avatar.Summary) {
	t := newTable()
	t.SetTitle("Avatars")
	t.AppendRows([]table.Row{
		{"Requested", len(summary.Results)},
		{"Saved", summary.Succeeded()},
		{"Failed", len(summary.Failed())},
	})
	t.Render()

	failed := summary.Failed()
	if len(failed) == 0 {
		return
	}
	f := newTable()
	f.AppendHeader(table.Row{"Identifier", "Reason"})
	for _, r := range failed {
		f.AppendRow(table.Row{r.Identifier, r.Reason()})
	}
	f.Render()
}
