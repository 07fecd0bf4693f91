package cmd

import (
	"os"

	"scene-publisher/core/object"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// anchorsCmd lists the scene anchors of the catalog.
var anchorsCmd = &cobra.Command{
	Use:   "anchors [prefix]",
	Short: "List scene anchors and their managed actors",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := bootstrap(ctx, true)
		if err != nil {
			return err
		}
		defer a.log.Sync()

		prefix := object.Path("/")
		if len(args) == 1 {
			prefix = object.Path(args[0])
		}
		reports, err := a.service.Anchors(ctx, prefix)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	},
}

func init() {
	RootCmd.AddCommand(anchorsCmd)
}
