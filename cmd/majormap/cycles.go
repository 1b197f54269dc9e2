// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hackinmonster/MajorMap/internal/registry"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Report prerequisite cycles",
	Long: `Cycles searches the stored prerequisite graph for courses that
require each other, directly or through a chain, and prints each cycle.`,
	RunE: runCycles,
}

func init() {
	rootCmd.AddCommand(cyclesCmd)
}

func runCycles(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	reg, err := s.LoadRegistry(cmd.Context())
	if err != nil {
		return err
	}
	g, err := s.LoadGraph(cmd.Context())
	if err != nil {
		return err
	}

	writeCycles(os.Stdout, reg, g.DetectCycles())
	return nil
}

// writeCycles prints each cycle as "A -> B -> A".
func writeCycles(w io.Writer, reg *registry.Registry, cycles [][]types.CourseID) {
	if len(cycles) == 0 {
		fmt.Fprintln(w, "No cycles.")
		return
	}
	for _, c := range cycles {
		codes := make([]string, 0, len(c)+1)
		for _, id := range c {
			codes = append(codes, courseCode(reg, id))
		}
		codes = append(codes, codes[0])
		fmt.Fprintln(w, strings.Join(codes, " -> "))
	}
	fmt.Fprintf(w, "\n%d cycle(s)\n", len(cycles))
}
