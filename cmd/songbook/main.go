// songbook serves an in-memory catalog of authors and songs over GraphQL.
package main

import (
	"fmt"
	"os"

	"github.com/getmockd/songbook/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	info := cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}
	if err := cli.Execute(info, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
