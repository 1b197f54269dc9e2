// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hackinmonster/MajorMap/internal/graph"
	"github.com/hackinmonster/MajorMap/internal/registry"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

var prereqsCmd = &cobra.Command{
	Use:   "prereqs COURSE",
	Short: "Show the requirements of a course",
	Long: `Prereqs prints the direct requirements of a course such as "MATH 2164"
or MATH2164. Alternatives are shown as "one of" lines. With --all it prints
every course reachable over prerequisite edges instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPrereqs,
}

func init() {
	prereqsCmd.Flags().Bool("all", false, "list transitive prerequisites")
	prereqsCmd.Flags().String("type", "prerequisite", "requirement type: prerequisite, corequisite, pre_or_corequisite")
	prereqsCmd.Flags().Bool("dependents", false, "list courses that require COURSE instead")

	rootCmd.AddCommand(prereqsCmd)
}

func runPrereqs(cmd *cobra.Command, args []string) error {
	key, ok := types.ParseCourseKey(strings.Join(args, " "))
	if !ok {
		return fmt.Errorf("invalid course code %q", strings.Join(args, " "))
	}
	typeFlag, _ := cmd.Flags().GetString("type")
	modality, err := types.ParseModality(typeFlag)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")
	if all && modality != types.Prerequisite {
		return fmt.Errorf("--all applies to prerequisites only")
	}
	dependents, _ := cmd.Flags().GetBool("dependents")

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
	id, err := reg.Resolve(key.Subject, key.Number)
	if err != nil {
		return err
	}

	switch {
	case dependents:
		writeCourseList(os.Stdout, reg, g.DependentsOf(id, modality))
	case all:
		writeCourseList(os.Stdout, reg, g.TransitivePrerequisitesOf(id))
	default:
		writeRequisites(os.Stdout, reg, g.RequisitesOf(id, modality))
	}
	return nil
}

// writeRequisites prints unconditional requirements one per line, followed
// by one "one of" line per choice group in first-seen order.
func writeRequisites(w io.Writer, reg *registry.Registry, reqs []graph.Requisite) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "None.")
		return
	}

	var (
		order   []int64
		choices = make(map[int64][]string)
	)
	for _, r := range reqs {
		code := courseCode(reg, r.RelatedID)
		if r.ChoiceGroup == nil {
			fmt.Fprintln(w, code)
			continue
		}
		g := *r.ChoiceGroup
		if _, ok := choices[g]; !ok {
			order = append(order, g)
		}
		choices[g] = append(choices[g], code)
	}
	for _, g := range order {
		codes := choices[g]
		sort.Strings(codes)
		fmt.Fprintf(w, "one of: %s\n", strings.Join(codes, ", "))
	}
}

func writeCourseList(w io.Writer, reg *registry.Registry, ids []types.CourseID) {
	if len(ids) == 0 {
		fmt.Fprintln(w, "None.")
		return
	}
	codes := make([]string, len(ids))
	for i, id := range ids {
		codes[i] = courseCode(reg, id)
	}
	sort.Strings(codes)
	for _, c := range codes {
		fmt.Fprintln(w, c)
	}
}

func courseCode(reg *registry.Registry, id types.CourseID) string {
	if c, ok := reg.Get(id); ok {
		return c.Code()
	}
	return fmt.Sprintf("#%d", id)
}
