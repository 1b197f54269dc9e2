// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

var pageFileRe = regexp.MustCompile(`^page-(\d+)\.html$`)

// LoadDir parses every saved page in dir in page order. Pages that fail to
// parse are reported to w and skipped; a page without course blocks is not
// an error. It fails only when dir cannot be read or yields no entries.
func LoadDir(dir string, w io.Writer) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	type pageFile struct {
		page int
		path string
	}
	var pages []pageFile
	for _, f := range files {
		m := pageFileRe.FindStringSubmatch(f.Name())
		if f.IsDir() || m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		pages = append(pages, pageFile{page: n, path: filepath.Join(dir, f.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].page < pages[j].page })

	var entries []Entry
	for _, p := range pages {
		got, err := parseFile(p.path, p.page)
		if errors.Is(err, ErrNoCourses) {
			fmt.Fprintf(w, "empty:   %s\n", filepath.Base(p.path))
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(p.path), err)
			continue
		}
		entries = append(entries, got...)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoCourses)
	}
	return entries, nil
}

func parseFile(path string, page int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePage(f, page)
}

// LoadPrograms parses the saved programs index in dir and every program page
// it links to. Missing or unparsable pages are reported to w and skipped.
// A missing index yields an error matching fs.ErrNotExist.
func LoadPrograms(dir, base string, w io.Writer) ([]types.Program, error) {
	links, err := readProgramIndex(filepath.Join(dir, ProgramsIndexFile), base)
	if err != nil {
		return nil, fmt.Errorf("reading programs index: %w", err)
	}

	var programs []types.Program
	for _, l := range links {
		prog, err := parseProgramFile(filepath.Join(dir, l.File()), l)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(w, "missing: %s %s\n", l.File(), l.Name)
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", l.File(), err)
			continue
		}
		programs = append(programs, prog)
	}
	return programs, nil
}

func parseProgramFile(path string, l ProgramLink) (types.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Program{}, err
	}
	defer f.Close()
	return ParseProgram(f, l)
}
