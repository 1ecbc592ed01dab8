package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scantower/pkg/errors"
	scio "github.com/matzehuels/scantower/pkg/io"
	"github.com/matzehuels/scantower/pkg/pipeline"
)

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <result-file> <result-file>... -o <output>",
		Short: "Combine the scanner runs of several result files",
		Long: `Combine the scanner runs of several result files into one file.

The first file provides the repository and the analyzer run. Scanner runs
must share the same scanner configuration. Results of the same scanner for
the same source tree are merged; provenances must agree between files.

Examples:
  scantower merge scancode.yml licensee.yml -o merged.yml`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--output is required")
			}
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			runner := pipeline.NewRunner(nil, nil, logger)
			res, err := runner.Load(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := scio.ExportFile(res, output); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Merged %d result files", len(args)))

			printSuccess("Merged %d result files", len(args))
			printFile(output)
			printNextStep("Build the report", appName+" reconcile "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json, .yml or .yaml)")

	return cmd
}
