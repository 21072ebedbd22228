package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/songbook/pkg/cli/internal/output"
	"github.com/getmockd/songbook/pkg/config"
)

// ConfigOutput is the JSON output of the config command.
type ConfigOutput struct {
	Config  *config.Config    `json:"config"`
	Sources map[string]string `json:"sources"`
}

func (a *app) newConfigCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadAll(configFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if a.jsonOutput {
				return output.JSON(out, ConfigOutput{Config: cfg, Sources: cfg.Sources})
			}

			if cfg.ConfigFile != "" {
				fmt.Fprintf(out, "# loaded from %s\n", cfg.ConfigFile)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			tw := output.Table(out)
			fmt.Fprintln(tw, "KEY\tSOURCE")
			keys := make([]string, 0, len(cfg.Sources))
			for k := range cfg.Sources {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(tw, "%s\t%s\n", k, cfg.Sources[k])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	return cmd
}
