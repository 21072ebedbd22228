package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/getmockd/songbook/pkg/config"
)

// BuildInfo holds the values injected at build time through ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// app holds state shared by the commands of one invocation.
type app struct {
	info       BuildInfo
	jsonOutput bool
	serve      func(ctx context.Context, cfg *config.Config, log *slog.Logger) error
}

// NewRootCmd builds the songbook command tree.
func NewRootCmd(info BuildInfo) *cobra.Command {
	a := &app{info: info, serve: runServe}

	root := &cobra.Command{
		Use:   "songbook",
		Short: "songbook serves authors and their songs over GraphQL",
		Long: `songbook is a small GraphQL API over an in-memory catalog of authors and songs.

Configuration can be provided via flags, environment variables (SONGBOOK_*), or a
YAML configuration file. Without a command, songbook runs "serve".`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("songbook {{.Version}}\n")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		a.newServeCmd(),
		a.newSchemaCmd(),
		a.newQueryCmd(),
		a.newSeedCmd(),
		a.newConfigCmd(),
		a.newVersionCmd(),
	)
	return root
}

// Execute runs the command line args, defaulting to serve.
func Execute(info BuildInfo, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd(info)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(resolveArgs(root, args))
	return root.Execute()
}

// resolveArgs routes bare invocations and leading serve flags to serve.
// Args that already name a subcommand, such as "--json version", are kept.
func resolveArgs(root *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return []string{"serve"}
	}

	first := args[0]
	if !strings.HasPrefix(first, "-") {
		return args
	}
	switch first {
	case "-h", "--help", "--version":
		return args
	}
	if lo.ContainsBy(args, func(arg string) bool { return isSubcommand(root, arg) }) {
		return args
	}
	return append([]string{"serve"}, args...)
}

func isSubcommand(root *cobra.Command, name string) bool {
	if name == "help" {
		return true
	}
	for _, cmd := range root.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return false
}
