package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/songbook/pkg/catalog"
	"github.com/getmockd/songbook/pkg/cli/internal/output"
)

// SeedSummary is the JSON output of seed validate.
type SeedSummary struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	Authors int    `json:"authors"`
	Songs   int    `json:"songs"`
	// Dangling counts songs whose authorId matches no author.
	Dangling int `json:"dangling"`
}

func (a *app) newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate or print seed files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a seed file without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := catalog.LoadSeedFile(args[0])
			if err != nil {
				return err
			}

			summary := SeedSummary{
				File:     args[0],
				Valid:    true,
				Authors:  len(seed.Authors),
				Songs:    len(seed.Songs),
				Dangling: len(seed.DanglingSongs()),
			}
			if a.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: valid (%d authors, %d songs)\n", summary.File, summary.Authors, summary.Songs)
			if summary.Dangling > 0 {
				output.Warn(out, "%d song(s) reference an unknown author", summary.Dangling)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the built-in seed as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), catalog.DefaultSeed())
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(catalog.DefaultSeed()); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	return cmd
}
