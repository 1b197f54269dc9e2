// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "List requirement text that could not be turned into edges",
	Long: `Anomalies lists the records of the last ingest: references to courses
missing from the catalog, courses that name themselves as a requirement,
and requirement text without any course code.`,
	RunE: runAnomalies,
}

func init() {
	anomaliesCmd.Flags().Bool("json", false, "output anomalies as JSON")

	rootCmd.AddCommand(anomaliesCmd)
}

func runAnomalies(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	anomalies, err := s.Anomalies(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(anomalies)
	}
	printAnomalies(os.Stdout, anomalies)
	return nil
}
