// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the majormap CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hackinmonster/MajorMap/internal/logging"
	"github.com/hackinmonster/MajorMap/internal/store"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "majormap/0.1"

// rootCmd is the base command for the majormap CLI.
var rootCmd = &cobra.Command{
	Use:   "majormap",
	Short: "Course prerequisite graph builder",
	Long: `majormap downloads a university course catalog, extracts each course's
prerequisite, corequisite and pre-or-corequisite text, and stores the
resulting requirement graph in SQLite.

Run fetch to download catalog pages, ingest to build the graph, then query
it with prereqs, cycles, programs and anomalies, or write it out with export.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./majormap.yaml or ~/.config/majormap/majormap.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding majormap.db and exports (default data)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable log output")

	viper.BindPFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", types.DefaultCatalogURL)
	v.SetDefault("catalog.first_page", 1)
	v.SetDefault("catalog.last_page", 37)
	v.SetDefault("catalog.pages_dir", filepath.Join("catalog", "pages"))
	v.SetDefault("catalog.programs_url", types.DefaultProgramsURL)
	v.SetDefault("catalog.programs_dir", filepath.Join("catalog", "programs"))
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.user_agent", defaultUserAgent)
	v.SetDefault("catalog.request_delay", time.Second)
	v.SetDefault("catalog.max_retries", 5)
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("ingest.workers", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("majormap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "majormap"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("MAJORMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flag, env, file and default settings.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Catalog.FirstPage < 1 || cfg.Catalog.LastPage < cfg.Catalog.FirstPage {
		return types.Config{}, fmt.Errorf("invalid page range %d-%d", cfg.Catalog.FirstPage, cfg.Catalog.LastPage)
	}
	if !strings.Contains(cfg.Catalog.BaseURL, "{page}") {
		return types.Config{}, fmt.Errorf("catalog.base_url must contain {page}")
	}
	return cfg, nil
}

// bindFlags binds command-local flags to config keys. Binding happens when
// the command runs because several commands share a key.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func newLogger(cfg types.Config) zerolog.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
}

// openStore loads the config and opens the store it names.
func openStore() (*store.Store, types.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, cfg, err
	}
	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, cfg, err
	}
	return s, cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
