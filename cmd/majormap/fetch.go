// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hackinmonster/MajorMap/internal/catalog"
	"github.com/hackinmonster/MajorMap/internal/httputil"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download catalog pages",
	Long: `Fetch downloads the pages of the paginated course catalog into the
pages directory. Pages already on disk are skipped, so an interrupted run
can be resumed. A manifest.yaml records where each page came from.

With --programs it also downloads the undergraduate programs index and each
program page into the programs directory.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("first", 0, "first catalog page (default 1)")
	fetchCmd.Flags().Int("last", 0, "last catalog page (default 37)")
	fetchCmd.Flags().String("pages-dir", "", "directory for downloaded pages (default catalog/pages)")
	fetchCmd.Flags().Duration("delay", 0, "delay between page downloads (default 1s)")
	fetchCmd.Flags().Bool("programs", false, "also download degree program pages")
	fetchCmd.Flags().String("programs-dir", "", "directory for program pages (default catalog/programs)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"catalog.first_page":    "first",
		"catalog.last_page":     "last",
		"catalog.pages_dir":     "pages-dir",
		"catalog.request_delay": "delay",
		"catalog.programs_dir":  "programs-dir",
	}); err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	client := httputil.NewClient(cfg.Catalog.Timeout, cfg.Catalog.UserAgent, log)
	client.MaxRetries = cfg.Catalog.MaxRetries

	f := catalog.NewFetcher(client, cfg.Catalog)
	sum, err := f.FetchPages(cmd.Context(), cfg.Catalog.FirstPage, cfg.Catalog.LastPage, os.Stdout)
	if err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d page(s) failed to download", sum.Failed)
	}

	if programs, _ := cmd.Flags().GetBool("programs"); programs {
		sum, err := f.FetchPrograms(cmd.Context(), os.Stdout)
		if err != nil {
			return err
		}
		if sum.HasFailures() {
			return fmt.Errorf("%d program page(s) failed to download", sum.Failed)
		}
	}
	return nil
}
