package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	scio "github.com/matzehuels/scantower/pkg/io"
	"github.com/matzehuels/scantower/pkg/pipeline"
)

// reconcileOpts holds the command-line flags for the reconcile command.
type reconcileOpts struct {
	output       string   // output file path (stdout if empty)
	format       string   // json or yaml
	minSeverity  string   // lowest issue severity to report
	omitExcluded bool     // leave out excluded projects and packages
	ignore       []string // extra ignore patterns for findings
	scanners     []string // report only these scanners, name or name@range
	noCache      bool     // disable the report cache
	refresh      bool     // rebuild the report even if cached
}

// reconcileCommand creates the reconcile command.
func (c *CLI) reconcileCommand() *cobra.Command {
	var opts reconcileOpts

	cmd := &cobra.Command{
		Use:   "reconcile <result-file>...",
		Short: "Build the per-package report of result files",
		Long: `Build the per-package report of one or more result files.

Every package gets the findings of the source tree it was resolved to, with
findings of nested repositories moved below their path and narrowed to the
package directory. When several files are given, their scanner runs are
merged in order; the first file provides the repository and the analyzer run.

Examples:
  scantower reconcile scan-result.yml
  scantower reconcile scan-result.yml -o report.json --min-severity warning
  scantower reconcile base.yml extra-scanner.yml --omit-excluded
  scantower reconcile scan-result.yml --scanner 'ScanCode@>=32, <33'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := c.reportOptions(cmd, args, opts)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			out, err := runner.Execute(cmd.Context(), popts)
			if err != nil {
				return err
			}

			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(out.Data)
				return err
			}
			if err := os.WriteFile(opts.output, out.Data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			printSuccess("Wrote report for %d packages", len(out.Report.Packages))
			printFile(opts.output)
			printReportSummary(out.Report.Summary, out.CacheHit)
			if n := out.Report.Summary.Unresolved; n > 0 {
				printWarning("%d packages without located source code", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: json or yaml (default from output extension, else json)")
	cmd.Flags().StringVar(&opts.minSeverity, "min-severity", "", "lowest issue severity to report: hint, warning or error")
	cmd.Flags().BoolVar(&opts.omitExcluded, "omit-excluded", false, "leave out excluded projects and packages")
	cmd.Flags().StringSliceVar(&opts.ignore, "ignore", nil, "glob of paths whose findings are dropped (repeatable)")
	cmd.Flags().StringArrayVar(&opts.scanners, "scanner", nil, "report only results of this scanner, as name or name@version-range (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild the report even if cached")

	return cmd
}

// reportOptions merges config values and flags into pipeline options. Flags
// win over the config; the output extension picks the format if neither
// names one.
func (c *CLI) reportOptions(cmd *cobra.Command, inputs []string, opts reconcileOpts) (pipeline.Options, error) {
	popts := pipeline.Options{Inputs: inputs, Refresh: opts.refresh, Logger: c.Logger}
	c.Config.apply(&popts)

	flags := cmd.Flags()
	popts.IgnorePatterns = append(popts.IgnorePatterns, opts.ignore...)
	if flags.Changed("format") {
		popts.Format = opts.format
	} else if popts.Format == "" && opts.output != "" {
		if f, err := scio.FormatFromPath(opts.output); err == nil {
			popts.Format = string(f)
		}
	}
	if flags.Changed("min-severity") {
		popts.MinSeverity = opts.minSeverity
	}
	if flags.Changed("omit-excluded") {
		popts.OmitExcluded = opts.omitExcluded
	}
	if flags.Changed("scanner") {
		popts.Scanners = opts.scanners
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return popts, nil
}
