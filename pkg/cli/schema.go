package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/songbook/pkg/songbook"
)

func (a *app) newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema (SDL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), songbook.SDL())
			return err
		},
	}
}
