// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackinmonster/MajorMap/internal/catalog"
	"github.com/hackinmonster/MajorMap/internal/ingest"
	"github.com/hackinmonster/MajorMap/internal/store"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the requirement graph from downloaded pages",
	Long: `Ingest parses every downloaded catalog page, registers each course,
turns its requirement text into relationship edges, and replaces the stored
snapshot. Courses keep their ids across runs. Requirement text that could
not be turned into edges is recorded as anomalies.

When program pages have been fetched, each program's requirement categories
are resolved against the stored courses and saved as well.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("pages-dir", "", "directory of downloaded pages (default catalog/pages)")
	ingestCmd.Flags().String("programs-dir", "", "directory of program pages (default catalog/programs)")
	ingestCmd.Flags().Int("workers", 0, "concurrent requirement builds (default NumCPU)")
	ingestCmd.Flags().Bool("anomalies", false, "print the anomaly table after ingesting")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"catalog.pages_dir":    "pages-dir",
		"catalog.programs_dir": "programs-dir",
		"ingest.workers":       "workers",
	}); err != nil {
		return err
	}

	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	log := newLogger(cfg)

	entries, err := catalog.LoadDir(cfg.Catalog.PagesDir, os.Stdout)
	if err != nil {
		return err
	}

	p := ingest.New(log, cfg.Ingest.Workers)
	sum, err := p.Run(cmd.Context(), entries)
	if err != nil {
		return err
	}

	saved, err := s.SaveSnapshot(cmd.Context(), p.Registry.All(), p.Graph.Edges(), sum.Anomalies)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\ncourses: %d (new %d, updated %d, removed %d)\n",
		sum.Courses, saved.Inserted, saved.Updated, saved.Removed)
	fmt.Fprintf(os.Stdout, "requirements: %d, edges: %d, anomalies: %d (%d dropped edges)\n",
		sum.Requirements, sum.Edges, len(sum.Anomalies), sum.Dropped())

	if err := ingestPrograms(cmd.Context(), s, cfg.Catalog, log); err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("anomalies"); show {
		fmt.Fprintln(os.Stdout)
		printAnomalies(os.Stdout, sum.Anomalies)
	}
	return nil
}

// ingestPrograms loads fetched program pages, resolves their courses against
// the stored registry and saves them. A missing programs index is skipped.
func ingestPrograms(ctx context.Context, s *store.Store, cfg types.CatalogConfig, log zerolog.Logger) error {
	programs, err := catalog.LoadPrograms(cfg.ProgramsDir, cfg.ProgramsURL, os.Stdout)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("dir", cfg.ProgramsDir).Msg("no programs index, skipping programs")
		return nil
	}
	if err != nil {
		return err
	}

	reg, err := s.LoadRegistry(ctx)
	if err != nil {
		return err
	}
	resolved, sum := ingest.ResolvePrograms(reg, programs, log)
	saved, err := s.SavePrograms(ctx, resolved)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "programs: %d (new %d, updated %d, removed %d), categories: %d, courses: %d, unresolved: %d\n",
		sum.Programs, saved.Inserted, saved.Updated, saved.Removed, sum.Categories, sum.Courses, len(sum.Unresolved))
	return nil
}

func printAnomalies(w io.Writer, anomalies []types.Anomaly) {
	if len(anomalies) == 0 {
		fmt.Fprintln(w, "No anomalies.")
		return
	}
	fmt.Fprintf(w, "%-10s  %-18s  %-28s  %-12s  %s\n", "Course", "Modality", "Reason", "Detail", "Text")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, a := range anomalies {
		fmt.Fprintf(w, "%-10s  %-18s  %-28s  %-12s  %s\n",
			a.CourseSubject+" "+a.CourseNumber, a.Modality, a.Reason, a.Detail, truncate(a.RawText, 40))
	}
	fmt.Fprintf(w, "\n%d anomalies\n", len(anomalies))
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
