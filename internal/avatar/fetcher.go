// Package avatar turns identifiers into downloaded profile images.
package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"rosterlink/internal/telemetry"
	"rosterlink/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("rosterlink/avatar")

const (
	DefaultProfileURL = "https://ac.nowcoder.com/acm/contest/profile/%s"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0 Safari/537.36"
	DefaultPause      = 500 * time.Millisecond
	DefaultTimeout    = 10 * time.Second
)

const (
	report_fetch_identifier = "fetcher.identifier"
	report_fetch_saved      = "fetcher.saved"
	report_fetch_failed     = "fetcher.fetch"
	report_fetch_head       = "fetcher.head"
	report_fetch_summary    = "fetcher.summary"
)

var (
	ErrProfileStatus  = errors.New("profile page returned a non-200 status")
	ErrNoAvatar       = errors.New("no avatar reference on profile page")
	ErrNotImage       = errors.New("avatar response is not an image")
	ErrDownloadStatus = errors.New("avatar download returned a non-200 status")
)

// Result is the outcome of fetching the avatar of one identifier.
type Result struct {
	Identifier string
	ProfileURL string
	SourceURL  string
	Extension  string
	Path       string
	Err        error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Reason is the failure reason of the result, "" on success.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Summary aggregates the results of a FetchAll run in identifier order.
type Summary struct {
	Results []Result
}

func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Fetcher downloads avatars one identifier at a time.
type Fetcher struct {
	http       *resty.Client
	dir        string
	profileURL string
	pause      time.Duration
	tel        telemetry.API
}

type fetcherCfg struct {
	tel        telemetry.API
	profileURL string
	userAgent  string
	pause      time.Duration
	timeout    time.Duration
	dump       *restyutil.Dump
}

type Option func(cfg *fetcherCfg)

func WithTelemetry(tel telemetry.API) Option {
	return func(cfg *fetcherCfg) {
		cfg.tel = tel
	}
}

// WithProfileURL sets the profile page template, "%s" is replaced by the identifier.
func WithProfileURL(template string) Option {
	return func(cfg *fetcherCfg) {
		cfg.profileURL = template
	}
}

func WithUserAgent(userAgent string) Option {
	return func(cfg *fetcherCfg) {
		cfg.userAgent = userAgent
	}
}

// WithPause sets the delay applied after every identifier.
func WithPause(pause time.Duration) Option {
	return func(cfg *fetcherCfg) {
		cfg.pause = pause
	}
}

// WithTimeout bounds every single request.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *fetcherCfg) {
		cfg.timeout = timeout
	}
}

// WithDump writes every http exchange of the fetcher into dump.
func WithDump(dump restyutil.Dump) Option {
	return func(cfg *fetcherCfg) {
		cfg.dump = &dump
	}
}

// NewFetcher creates a fetcher that stores avatars under dir.
func NewFetcher(dir string, opts ...Option) *Fetcher {
	cfg := fetcherCfg{
		profileURL: DefaultProfileURL,
		userAgent:  DefaultUserAgent,
		pause:      DefaultPause,
		timeout:    DefaultTimeout,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("avatar", cfg.tel)

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", cfg.userAgent)
	client.SetTimeout(cfg.timeout)
	telemetry.InstrumentResty(client, tel)
	if cfg.dump != nil {
		cfg.dump.Attach(client)
	}

	return &Fetcher{
		http:       client,
		dir:        dir,
		profileURL: cfg.profileURL,
		pause:      cfg.pause,
		tel:        tel,
	}
}

// ProfileURL returns the profile page of an identifier.
func (f *Fetcher) ProfileURL(id string) string {
	return fmt.Sprintf(f.profileURL, id)
}

// Fetch resolves and downloads the avatar of a single identifier. Every
// failure is returned in the Result, Fetch never aborts the caller.
func (f *Fetcher) Fetch(ctx context.Context, id string) Result {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("identifier", id))

	result := f.fetch(ctx, id)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "failed to fetch avatar")
	}
	return result
}

func (f *Fetcher) fetch(ctx context.Context, id string) Result {
	result := Result{
		Identifier: id,
		ProfileURL: f.ProfileURL(id),
	}

	res, err := f.http.R().
		SetContext(ctx).
		Get(result.ProfileURL)
	if err != nil {
		result.Err = fmt.Errorf("fetch profile page: %w", err)
		return result
	}
	if res.StatusCode() != 200 {
		result.Err = fmt.Errorf("%w: HTTP %d", ErrProfileStatus, res.StatusCode())
		return result
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		result.Err = fmt.Errorf("parse profile page: %w", err)
		return result
	}
	ref, ok := FindAvatarURL(doc)
	if !ok {
		result.Err = ErrNoAvatar
		return result
	}

	pageURL := servedURL(res, result.ProfileURL)
	result.SourceURL, err = NormalizeURL(ref, pageURL)
	if err != nil {
		result.Err = fmt.Errorf("normalize avatar url %q: %w", ref, err)
		return result
	}

	result.Extension = f.ResolveExtension(ctx, result.SourceURL)
	result.Path = filepath.Join(f.dir, id, "photo"+result.Extension)

	err = f.download(ctx, result.SourceURL, result.Path)
	if err != nil {
		result.Err = err
	}
	return result
}

// servedURL is the url that actually produced res, after redirects.
func servedURL(res *resty.Response, requested string) *url.URL {
	if res.RawResponse != nil && res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		return res.RawResponse.Request.URL
	}
	parsed, err := url.Parse(requested)
	if err != nil {
		return nil
	}
	return parsed
}

// ResolveExtension prefers the extension in the url path, then asks the
// server for the content type with a HEAD request, and falls back to
// DefaultExtension.
func (f *Fetcher) ResolveExtension(ctx context.Context, avatarURL string) string {
	ext := ExtensionFromURL(avatarURL)
	if ext != "" {
		return ext
	}

	res, err := f.http.R().
		SetContext(ctx).
		Head(avatarURL)
	if err != nil {
		f.tel.ReportWarning(report_fetch_head, avatarURL, err)
		return DefaultExtension
	}

	ext = ExtensionFromContentType(res.Header().Get("Content-Type"))
	if ext == "" {
		return DefaultExtension
	}
	return ext
}

// download streams the image into a temporary file next to dst and only
// renames it into place once the whole body has been written.
func (f *Fetcher) download(ctx context.Context, avatarURL, dst string) error {
	res, err := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(avatarURL)
	if err != nil {
		return fmt.Errorf("download avatar: %w", err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != 200 {
		return fmt.Errorf("%w: HTTP %d", ErrDownloadStatus, res.StatusCode())
	}
	contentType := res.Header().Get("Content-Type")
	if !IsImage(contentType) {
		return fmt.Errorf("%w: %q", ErrNotImage, contentType)
	}

	dir := filepath.Dir(dst)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".photo-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write avatar: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// FetchAll fetches the avatar of every identifier in order, pausing after each
// attempt whether it succeeded or not.
func (f *Fetcher) FetchAll(ctx context.Context, ids []string) Summary {
	summary := Summary{Results: make([]Result, 0, len(ids))}

	for i, id := range ids {
		f.tel.ReportProgress(report_fetch_identifier, fmt.Sprintf("%d/%d", i+1, len(ids)), id)

		result := f.Fetch(ctx, id)
		if result.OK() {
			f.tel.ReportProgress(report_fetch_saved, id, result.Path)
		} else {
			f.tel.ReportWarning(report_fetch_failed, id, result.Reason())
		}
		summary.Results = append(summary.Results, result)

		if !f.wait(ctx) {
			break
		}
	}

	f.tel.ReportCount(report_fetch_summary, int64(summary.Succeeded()))
	return summary
}

func (f *Fetcher) wait(ctx context.Context) bool {
	if f.pause <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(f.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
