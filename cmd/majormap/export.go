// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored graph to YAML, JSON or CSV",
	Long: `Export writes the stored courses with their requirements to
data/export.yaml or data/export.json, or writes the courses,
relationships, major categories and category courses tables as CSV files
under the data directory.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml, json, csv")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var paths []string
	switch format {
	case "yaml":
		path, err := s.ExportYAML(cmd.Context())
		if err != nil {
			return err
		}
		paths = append(paths, path)
	case "json":
		path, err := s.ExportJSON(cmd.Context())
		if err != nil {
			return err
		}
		paths = append(paths, path)
	case "csv":
		if paths, err = s.ExportCSV(cmd.Context()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or csv", format)
	}

	for _, p := range paths {
		fmt.Printf("Exported to %s\n", p)
	}
	return nil
}
