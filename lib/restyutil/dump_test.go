package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	dump, err := NewDump(dir)
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(dir, "stale.txt"))

	client := resty.New()
	dump.Attach(client)

	_, err = client.R().SetHeader("X-Req", "1").Get(server.URL + "/first")
	require.NoError(t, err)
	_, err = client.R().Get(server.URL + "/second")
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	text := string(first)
	require.True(t, strings.HasPrefix(text, "---- REQUEST ----"))
	require.Contains(t, text, "GET "+server.URL+"/first")
	require.Contains(t, text, "X-Req: 1")
	require.Contains(t, text, "418 "+server.URL+"/first")
	require.Contains(t, text, "X-Test: yes")
	require.True(t, strings.HasSuffix(text, "short and stout"))

	second, err := os.ReadFile(filepath.Join(dir, "2.txt"))
	require.NoError(t, err)
	require.Contains(t, string(second), "/second")
}

func TestFormatHeadersSorted(t *testing.T) {
	headers := http.Header{}
	headers.Add("B", "2")
	headers.Add("A", "1")
	headers.Add("A", "3")
	require.Equal(t, "A: 1\nA: 3\nB: 2", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(nil))
}

func TestDumpRequestBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	dump, err := NewDump(dir)
	require.NoError(t, err)

	client := resty.New()
	dump.Attach(client)

	require.NotPanics(t, func() {
		_, err = client.R().Head(server.URL + "/head")
		require.NoError(t, err)
		_, err = client.R().SetBody("payload=1").Post(server.URL + "/post")
		require.NoError(t, err)
	})

	head, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(head), "HEAD "+server.URL+"/head")

	post, err := os.ReadFile(filepath.Join(dir, "2.txt"))
	require.NoError(t, err)
	require.Contains(t, string(post), "payload=1")
}
