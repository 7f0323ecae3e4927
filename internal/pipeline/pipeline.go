// Package pipeline wires the index builder, the reconciler, the artifact
// writers and the avatar fetcher into the runs exposed by the cli.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"rosterlink/internal/artifact"
	"rosterlink/internal/avatar"
	"rosterlink/internal/config"
	"rosterlink/internal/identity"
	"rosterlink/internal/reconcile"
	"rosterlink/internal/roster"
	"rosterlink/internal/telemetry"
	"rosterlink/lib/restyutil"
)

const (
	report_artifact_write = "artifact.write"
	report_artifact_saved = "artifact.saved"
	report_roster_rows    = "roster.rows"
	report_identifiers    = "avatars.identifiers"
)

var ErrNoIdentifiers = errors.New("no identifiers to fetch avatars for")

type pipelineCfg struct {
	tel telemetry.API
}

type Option func(cfg *pipelineCfg)

func WithTelemetry(tel telemetry.API) Option {
	return func(cfg *pipelineCfg) {
		cfg.tel = tel
	}
}

func newCfg(opts []Option) pipelineCfg {
	var cfg pipelineCfg
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	return cfg
}

// ResolveReport is everything a resolve run observed.
type ResolveReport struct {
	Paths       config.Paths
	Sources     []identity.SourceReport
	IndexSize   int
	Result      reconcile.Result
	Suggestions []reconcile.Suggestion
	// ArtifactErr joins every artifact that could not be written, the run
	// itself still counts as completed.
	ArtifactErr error
}

// ParsedSources is the number of documents that contributed to the index.
func (r ResolveReport) ParsedSources() int {
	n := 0
	for _, s := range r.Sources {
		if s.OK() {
			n++
		}
	}
	return n
}

// Resolve builds the identity index, reconciles the roster against it and
// writes the identifier list, the unmatched list and the reconciled table.
//
// It fails when the roster does not exist, when no document could be parsed
// or when the roster has no nickname column.
func Resolve(ctx context.Context, cfg config.Config, opts ...Option) (ResolveReport, error) {
	pcfg := newCfg(opts)
	tel := telemetry.NewScopedAPI("pipeline", pcfg.tel)

	report := ResolveReport{Paths: cfg.Paths()}

	_, err := os.Stat(report.Paths.InputFile)
	if os.IsNotExist(err) {
		return report, fmt.Errorf("%w: %s", roster.ErrInputNotFound, report.Paths.InputFile)
	}

	index, sources, err := identity.Build(ctx, report.Paths.HtmlFiles, identity.WithTelemetry(pcfg.tel))
	report.Sources = sources
	if err != nil {
		return report, err
	}
	report.IndexSize = len(index)

	table, err := roster.ReadFile(report.Paths.InputFile, cfg.Columns)
	if err != nil {
		return report, err
	}
	tel.ReportProgress(report_roster_rows, report.Paths.InputFile, len(table.Rows))

	report.Result = reconcile.Reconcile(table.Rows, index, reconcile.WithTelemetry(pcfg.tel))
	report.ArtifactErr = writeArtifacts(tel, report.Paths, report.Result)
	report.Suggestions = reconcile.Suggest(report.Result.Unmatched, index, cfg.Suggest.Threshold)

	return report, nil
}

func writeArtifacts(tel telemetry.API, paths config.Paths, result reconcile.Result) error {
	writes := []struct {
		path  string
		write func() error
	}{
		{paths.OutputFile, func() error { return artifact.WriteReconciledTable(paths.OutputFile, result.Rows) }},
		{paths.Unmatched, func() error { return artifact.WriteUnmatched(paths.Unmatched, result.Unmatched) }},
		{paths.IdentifierList, func() error { return artifact.WriteIdentifierList(paths.IdentifierList, result.Identifiers) }},
	}

	var errs []error
	for _, w := range writes {
		if w.path == "" {
			continue
		}
		err := w.write()
		if err != nil {
			tel.ReportBroken(report_artifact_write, w.path, err)
			errs = append(errs, fmt.Errorf("write %s: %w", w.path, err))
			continue
		}
		tel.ReportProgress(report_artifact_saved, w.path)
	}
	return errors.Join(errs...)
}

func newFetcher(cfg config.Config, tel telemetry.API) (*avatar.Fetcher, error) {
	opts := []avatar.Option{
		avatar.WithTelemetry(tel),
		avatar.WithProfileURL(cfg.Avatar.ProfileUrl),
		avatar.WithPause(cfg.Pause()),
		avatar.WithTimeout(cfg.Timeout()),
	}
	if cfg.Avatar.UserAgent != "" {
		opts = append(opts, avatar.WithUserAgent(cfg.Avatar.UserAgent))
	}
	paths := cfg.Paths()
	if paths.DumpDir != "" {
		dump, err := restyutil.NewDump(paths.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("prepare http dump: %w", err)
		}
		opts = append(opts, avatar.WithDump(dump))
	}
	return avatar.NewFetcher(paths.AvatarDir, opts...), nil
}

// Avatars downloads the avatar of every identifier, in order.
func Avatars(ctx context.Context, cfg config.Config, ids []string, opts ...Option) (avatar.Summary, error) {
	pcfg := newCfg(opts)
	if len(ids) == 0 {
		return avatar.Summary{}, ErrNoIdentifiers
	}
	telemetry.NewScopedAPI("pipeline", pcfg.tel).ReportCount(report_identifiers, int64(len(ids)))

	fetcher, err := newFetcher(cfg, pcfg.tel)
	if err != nil {
		return avatar.Summary{}, err
	}
	return fetcher.FetchAll(ctx, ids), nil
}

// AvatarsFromList is Avatars over the identifier list written by Resolve.
func AvatarsFromList(ctx context.Context, cfg config.Config, opts ...Option) (avatar.Summary, error) {
	path := cfg.Paths().IdentifierList
	ids, err := artifact.ReadIdentifierList(path)
	if os.IsNotExist(err) {
		return avatar.Summary{}, fmt.Errorf("%w: %s does not exist", ErrNoIdentifiers, path)
	}
	if err != nil {
		return avatar.Summary{}, err
	}
	return Avatars(ctx, cfg, ids, opts...)
}

// RunReport is the outcome of a full run.
type RunReport struct {
	Resolve ResolveReport
	Avatars avatar.Summary
}

// Run resolves the roster and then fetches the avatars of the matched identifiers.
func Run(ctx context.Context, cfg config.Config, opts ...Option) (RunReport, error) {
	var report RunReport

	resolved, err := Resolve(ctx, cfg, opts...)
	report.Resolve = resolved
	if err != nil {
		return report, err
	}

	summary, err := Avatars(ctx, cfg, resolved.Result.Identifiers, opts...)
	report.Avatars = summary
	if errors.Is(err, ErrNoIdentifiers) {
		return report, nil
	}
	return report, err
}
