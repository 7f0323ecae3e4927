package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	tel := NewScopedAPI("outer", NewScopedAPI("inner", rec))

	err := errors.New("boom")
	tel.ReportBroken("component", err)
	tel.ReportWarning("component", "x")
	tel.ReportProgress("done", 1)
	tel.ReportCount("items", 3)

	require.Equal(t, []Report{
		{Kind: "broken", ID: "inner: outer: component", Params: []any{err}},
		{Kind: "warning", ID: "inner: outer: component", Params: []any{"x"}},
		{Kind: "progress", ID: "inner: outer: done", Params: []any{1}},
		{Kind: "count", ID: "inner: outer: items", Count: 3},
	}, rec.Reports)

	require.Len(t, rec.Find("broken", "component"), 1)
	require.Empty(t, rec.Find("debug", "component"))
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)
	require.Len(t, rec.Find("debug", report_resty_request), 1)
	require.Len(t, rec.Find("debug", report_resty_response), 1)

	server.Close()
	_, err = client.R().Get(server.URL)
	require.Error(t, err)
	require.Len(t, rec.Find("warning", report_resty_response), 1)
}
