package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scantower/pkg/core/model"
)

// idCommand creates the id command.
func (c *CLI) idCommand() *cobra.Command {
	var orgs []string

	cmd := &cobra.Command{
		Use:   "id <type:namespace:name:version>",
		Short: "Inspect a package identifier",
		Long: `Parse a package identifier and print its components, package URL and
storage path.

Examples:
  scantower id Maven:org.apache.commons:commons-lang3:3.14.0
  scantower id NPM:@angular:core:17.0.0 --org angular`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseIdentifier(args[0])
			if err != nil {
				return err
			}
			printKeyValue("type", id.Type)
			printKeyValue("namespace", id.Namespace)
			printKeyValue("name", id.Name)
			printKeyValue("version", id.Version)
			printKeyValue("coordinates", id.ToCoordinates())
			printKeyValue("purl", id.ToPurl())
			printKeyValue("path", id.ToPath("", ""))
			if len(orgs) > 0 {
				from := "no"
				if id.IsFromOrg(orgs...) {
					from = "yes"
				}
				printKeyValue("from org", from+" ("+strings.Join(orgs, ", ")+")")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&orgs, "org", nil, "check whether the package belongs to these organizations")

	return cmd
}
