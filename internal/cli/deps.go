package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scantower/pkg/core/dependency"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/result"
	"github.com/matzehuels/scantower/pkg/errors"
	"github.com/matzehuels/scantower/pkg/pipeline"
)

// depsCommand creates the deps command with its query subcommands.
func (c *CLI) depsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Query the dependency graphs of a result file",
		Long: `Query the dependency graphs of a result file.

Examples:
  scantower deps list scan-result.yml
  scantower deps list scan-result.yml Maven:com.example:app:1.0 --max-depth 1
  scantower deps paths scan-result.yml Maven:com.example:app:1.0
  scantower deps depth scan-result.yml Maven:com.example:app:1.0
  scantower deps issues scan-result.yml --min-severity warning`,
	}

	cmd.AddCommand(c.depsListCommand())
	cmd.AddCommand(c.depsPathsCommand())
	cmd.AddCommand(c.depsDepthCommand())
	cmd.AddCommand(c.depsIssuesCommand())

	return cmd
}

// loadResult reads a result file and applies the ignore patterns and
// excludes of the config.
func (c *CLI) loadResult(ctx context.Context, path string) (*result.Result, error) {
	res, err := pipeline.NewRunner(nil, nil, loggerFromContext(ctx)).Load(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	var opts pipeline.Options
	c.Config.apply(&opts)
	return pipeline.ApplyOverrides(res, opts)
}

// project returns the project with the given coordinates.
func project(res *result.Result, coordinates string) (*model.Project, error) {
	id, err := model.ParseIdentifier(coordinates)
	if err != nil {
		return nil, err
	}
	p, ok := res.Project(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no project %s", id)
	}
	return p, nil
}

// depsListCommand creates the "deps list" subcommand.
func (c *CLI) depsListCommand() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "list <result-file> [id]",
		Short: "List the dependencies of a project or package, or of all projects",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(args) == 2 {
				id, err := model.ParseIdentifier(args[1])
				if err != nil {
					return err
				}
				if _, ok := res.Package(id); !ok {
					return errors.New(errors.ErrCodeNotFound, "no project or package %s", id)
				}
				writeIDs(w, "", res.Dependencies(id, maxDepth))
				return nil
			}
			for _, p := range res.Projects(false) {
				fmt.Fprintln(w, StyleTitle.Render(p.ID.String()))
				writeIDs(w, "  ", res.Dependencies(p.ID, maxDepth))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", dependency.Unbounded, "levels of dependencies to list (-1 for all)")

	return cmd
}

// depsPathsCommand creates the "deps paths" subcommand.
func (c *CLI) depsPathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths <result-file> <project-id>",
		Short: "Print the shortest path to every dependency of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := project(res, args[1])
			if err != nil {
				return err
			}
			paths, err := dependency.ShortestPaths(res.Navigator(), p)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, scope := range slices.Sorted(maps.Keys(paths)) {
				fmt.Fprintln(w, StyleTitle.Render(scope))
				byID := paths[scope]
				for _, id := range slices.SortedFunc(maps.Keys(byID), model.CompareIdentifiers) {
					hops := make([]string, 0, len(byID[id])+1)
					for _, a := range byID[id] {
						hops = append(hops, a.String())
					}
					hops = append(hops, StyleValue.Render(id.String()))
					fmt.Fprintln(w, "  "+strings.Join(hops, StyleDim.Render(" "+iconArrow+" ")))
				}
			}
			return nil
		},
	}
}

// depsDepthCommand creates the "deps depth" subcommand.
func (c *CLI) depsDepthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "depth <result-file> <project-id>",
		Short: "Print the dependency tree depth of every scope of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := project(res, args[1])
			if err != nil {
				return err
			}
			nav := res.Navigator()
			w := cmd.OutOrStdout()
			for _, scope := range nav.ScopeNames(p) {
				depth := dependency.DependencyTreeDepth(nav, p, scope)
				fmt.Fprintf(w, "%s %s\n", scope, StyleNumber.Render(fmt.Sprint(depth)))
			}
			return nil
		},
	}
}

// depsIssuesCommand creates the "deps issues" subcommand.
func (c *CLI) depsIssuesCommand() *cobra.Command {
	var (
		minSeverity  string
		omitExcluded bool
	)

	cmd := &cobra.Command{
		Use:   "issues <result-file>",
		Short: "List the issues of the analyzer, the dependency trees and the scan results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("min-severity") && c.Config.Output.MinSeverity != "" {
				minSeverity = c.Config.Output.MinSeverity
			}
			if !cmd.Flags().Changed("omit-excluded") {
				omitExcluded = c.Config.Output.OmitExcluded
			}
			sev, ok := model.ParseSeverity(minSeverity)
			if !ok {
				return pipeline.ValidateSeverity(minSeverity)
			}

			res, err := c.loadResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			issues := res.Issues(omitExcluded, sev)
			w := cmd.OutOrStdout()
			for _, id := range slices.SortedFunc(maps.Keys(issues), model.CompareIdentifiers) {
				for _, issue := range issues[id] {
					fmt.Fprintln(w, formatIssue(id, issue))
				}
			}
			if len(issues) == 0 {
				printInfo("No issues at or above %s", sev)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&minSeverity, "min-severity", pipeline.DefaultMinSeverity, "lowest severity to list: hint, warning or error")
	cmd.Flags().BoolVar(&omitExcluded, "omit-excluded", false, "leave out issues of excluded projects and packages")

	return cmd
}

func writeIDs(w io.Writer, indent string, ids []model.Identifier) {
	for _, id := range ids {
		fmt.Fprintln(w, indent+id.String())
	}
}
