// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

var programsCmd = &cobra.Command{
	Use:   "programs [NAME]",
	Short: "List degree programs or show one program's categories",
	Long: `Programs lists the stored degree programs with their category counts.
Given a NAME, it prints every program whose name contains NAME (ignoring
case) with each requirement category and the catalog courses it names.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrograms,
}

func init() {
	programsCmd.Flags().Bool("json", false, "output programs as JSON")

	rootCmd.AddCommand(programsCmd)
}

func runPrograms(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	programs, err := s.Programs(cmd.Context())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		programs = matchPrograms(programs, args[0])
		if len(programs) == 0 {
			return fmt.Errorf("no program matches %q", args[0])
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(programs)
	}
	if len(args) == 1 {
		writeProgramDetails(os.Stdout, programs)
		return nil
	}
	writeProgramList(os.Stdout, programs)
	return nil
}

func matchPrograms(programs []types.Program, name string) []types.Program {
	name = strings.ToLower(name)
	var out []types.Program
	for _, p := range programs {
		if strings.Contains(strings.ToLower(p.Name), name) {
			out = append(out, p)
		}
	}
	return out
}

func writeProgramList(w io.Writer, programs []types.Program) {
	if len(programs) == 0 {
		fmt.Fprintln(w, "No programs. Run fetch --programs, then ingest.")
		return
	}
	for _, p := range programs {
		courses := 0
		for _, c := range p.Categories {
			courses += len(c.Courses)
		}
		fmt.Fprintf(w, "%-60s  %3d categories  %4d courses\n", p.Name, len(p.Categories), courses)
	}
	fmt.Fprintf(w, "\n%d programs\n", len(programs))
}

// writeProgramDetails prints each program followed by its categories, one
// indented line per category with its courses on the next line.
func writeProgramDetails(w io.Writer, programs []types.Program) {
	for i, p := range programs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, p.Name)
		for _, c := range p.Categories {
			fmt.Fprintf(w, "  %s\n", c.Name)
			if len(c.Courses) == 0 {
				continue
			}
			codes := make([]string, len(c.Courses))
			for j, k := range c.Courses {
				codes[j] = k.String()
			}
			fmt.Fprintf(w, "    %s\n", strings.Join(codes, ", "))
		}
	}
}
