package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/abhisek/devquest/internal/api"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("devquest", displayVersion(version))
		fmt.Println("requires service API", api.DefaultConfig().MinServerVersion, "or newer")
	},
}

// displayVersion normalizes release tags to canonical semver and leaves
// anything else, such as development builds, as it is.
func displayVersion(v string) string {
	tagged := v
	if len(tagged) > 0 && tagged[0] != 'v' {
		tagged = "v" + tagged
	}
	if semver.IsValid(tagged) {
		return semver.Canonical(tagged)
	}
	return v
}
