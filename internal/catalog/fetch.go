// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/hackinmonster/MajorMap/internal/httputil"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

// ManifestFile is the name of the page manifest written next to the pages.
const ManifestFile = "manifest.yaml"

// FetchSummary holds the outcome of a page download run.
type FetchSummary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of pages processed.
func (s FetchSummary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// HasFailures reports whether any page failed to download.
func (s FetchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ManifestPage records where a saved page came from.
type ManifestPage struct {
	Page      int       `yaml:"page"`
	File      string    `yaml:"file"`
	URL       string    `yaml:"url"`
	FetchedAt time.Time `yaml:"fetched_at"`
}

// Manifest lists the saved pages of a catalog.
type Manifest struct {
	BaseURL string         `yaml:"base_url"`
	Pages   []ManifestPage `yaml:"pages"`
}

// Fetcher downloads catalog pages into a directory.
type Fetcher struct {
	Client *httputil.Client
	Config types.CatalogConfig

	// Sleep waits between requests. Tests replace it.
	Sleep func(context.Context, time.Duration) error
}

// NewFetcher returns a Fetcher for cfg using client.
func NewFetcher(client *httputil.Client, cfg types.CatalogConfig) *Fetcher {
	return &Fetcher{Client: client, Config: cfg, Sleep: sleepCtx}
}

// PageURL returns the URL of page n.
func (f *Fetcher) PageURL(n int) string {
	return strings.ReplaceAll(f.Config.BaseURL, "{page}", strconv.Itoa(n))
}

// PageFile returns the file name a page is saved under.
func PageFile(n int) string {
	return fmt.Sprintf("page-%03d.html", n)
}

// FetchPages downloads pages first..last into the pages directory, skipping
// pages already on disk. It prints per-page status to w, continues after
// individual failures, and rewrites the manifest at the end.
func (f *Fetcher) FetchPages(ctx context.Context, first, last int, w io.Writer) (FetchSummary, error) {
	var sum FetchSummary
	if first < 1 || last < first {
		return sum, fmt.Errorf("invalid page range %d-%d", first, last)
	}
	dir := f.Config.PagesDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sum, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	manifest, err := ReadManifest(dir)
	if err != nil {
		manifest = &Manifest{}
	}
	manifest.BaseURL = f.Config.BaseURL
	known := make(map[int]int, len(manifest.Pages))
	for i, p := range manifest.Pages {
		known[p.Page] = i
	}

	requested := false
	for n := first; n <= last; n++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := PageFile(n)
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			sum.Skipped++
			continue
		}

		if requested && f.Config.RequestDelay > 0 && f.Sleep != nil {
			if err := f.Sleep(ctx, f.Config.RequestDelay); err != nil {
				return sum, err
			}
		}
		requested = true

		url := f.PageURL(n)
		if err := f.download(ctx, url, path); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			sum.Failed++
			continue
		}
		fmt.Fprintf(w, "fetched: %s\n", name)
		sum.Downloaded++

		entry := ManifestPage{Page: n, File: name, URL: url, FetchedAt: time.Now().UTC()}
		if i, ok := known[n]; ok {
			manifest.Pages[i] = entry
		} else {
			known[n] = len(manifest.Pages)
			manifest.Pages = append(manifest.Pages, entry)
		}
	}

	sort.Slice(manifest.Pages, func(i, j int) bool { return manifest.Pages[i].Page < manifest.Pages[j].Page })
	if err := writeManifest(dir, manifest); err != nil {
		return sum, err
	}

	fmt.Fprintf(w, "\nFetch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		sum.Downloaded, sum.Skipped, sum.Failed, sum.Total())
	return sum, nil
}

// download saves url to path through a temporary file so a partial page is
// never mistaken for a complete one on the next run.
func (f *Fetcher) download(ctx context.Context, url, path string) error {
	body, err := f.Client.GetBody(ctx, url)
	if err != nil {
		return err
	}
	if !bytes.Contains(body, []byte("<")) {
		return errors.New("response is not HTML")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(body)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, errors.Join(writeErr, closeErr))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest of a pages directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}
	return &m, nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ProgramsIndexFile is the saved copy of the programs index page.
const ProgramsIndexFile = "programs-index.html"

// FetchPrograms downloads the programs index and every program page it
// links to into the programs directory. The index and pages already on disk
// are reused; delete the index to pick up new programs.
func (f *Fetcher) FetchPrograms(ctx context.Context, w io.Writer) (FetchSummary, error) {
	var sum FetchSummary
	dir := f.Config.ProgramsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sum, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	indexPath := filepath.Join(dir, ProgramsIndexFile)
	if _, err := os.Stat(indexPath); err != nil {
		if err := f.download(ctx, f.Config.ProgramsURL, indexPath); err != nil {
			return sum, fmt.Errorf("fetching programs index: %w", err)
		}
		fmt.Fprintf(w, "fetched: %s\n", ProgramsIndexFile)
	}

	links, err := readProgramIndex(indexPath, f.Config.ProgramsURL)
	if err != nil {
		return sum, err
	}

	for _, l := range links {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := l.File()
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			sum.Skipped++
			continue
		}

		if f.Config.RequestDelay > 0 && f.Sleep != nil {
			if err := f.Sleep(ctx, f.Config.RequestDelay); err != nil {
				return sum, err
			}
		}
		if err := f.download(ctx, l.URL, path); err != nil {
			fmt.Fprintf(w, "failed:  %s %s (%v)\n", name, l.Name, err)
			sum.Failed++
			continue
		}
		fmt.Fprintf(w, "fetched: %s %s\n", name, l.Name)
		sum.Downloaded++
	}

	fmt.Fprintf(w, "\nPrograms summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		sum.Downloaded, sum.Skipped, sum.Failed, sum.Total())
	return sum, nil
}

func readProgramIndex(path, base string) ([]ProgramLink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseProgramIndex(f, base)
}
