// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackinmonster/MajorMap/internal/httputil"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

func testFetcher(t *testing.T, url, dir string) *Fetcher {
	t.Helper()
	client := httputil.NewClient(5*time.Second, "majormap-test", zerolog.Nop())
	f := NewFetcher(client, types.CatalogConfig{
		BaseURL:      url + "/content.php?cpage={page}",
		PagesDir:     dir,
		RequestDelay: time.Second,
	})
	f.Sleep = func(context.Context, time.Duration) error { return nil }
	return f
}

func TestFetchPages(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("cpage") == "3" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PageFile(2)), []byte(samplePage), 0o644))

	var out bytes.Buffer
	sum, err := testFetcher(t, ts.URL, dir).FetchPages(context.Background(), 1, 3, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Downloaded)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 3, sum.Total())
	assert.True(t, sum.HasFailures())
	assert.Equal(t, int32(2), calls.Load())

	assert.FileExists(t, filepath.Join(dir, "page-001.html"))
	assert.NoFileExists(t, filepath.Join(dir, "page-003.html"))
	assert.Contains(t, out.String(), "skipped: page-002.html")
	assert.Contains(t, out.String(), "failed:  page-003.html")

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	require.Len(t, m.Pages, 1)
	assert.Equal(t, 1, m.Pages[0].Page)
	assert.True(t, strings.HasSuffix(m.Pages[0].URL, "cpage=1"))
}

func TestFetchPagesInvalidRange(t *testing.T) {
	_, err := testFetcher(t, "http://unused", t.TempDir()).FetchPages(context.Background(), 5, 2, &bytes.Buffer{})
	require.Error(t, err)
}

func TestFetchPagesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testFetcher(t, "http://unused", t.TempDir()).FetchPages(ctx, 1, 2, &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPageURL(t *testing.T) {
	f := NewFetcher(nil, types.CatalogConfig{BaseURL: "https://example.edu/c?p={page}&x={page}"})
	assert.Equal(t, "https://example.edu/c?p=12&x=12", f.PageURL(12))
	assert.Equal(t, "page-012.html", PageFile(12))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PageFile(10)), []byte(samplePage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PageFile(2)), []byte(samplePage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PageFile(3)), []byte("<p>empty</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("pages: []\n"), 0o644))

	var out bytes.Buffer
	entries, err := LoadDir(dir, &out)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, 2, entries[0].Page)
	assert.Equal(t, 10, entries[3].Page)
	assert.Contains(t, out.String(), "empty:   page-003.html")
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir(), &bytes.Buffer{})
	require.ErrorIs(t, err, ErrNoCourses)
}
