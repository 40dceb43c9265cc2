package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo is set from main via ldflags
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Dirty   bool   `json:"dirty"`
}

var buildInfo = BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"}

// SetVersion records the build metadata printed by `bunup version`
func SetVersion(version, commit, date, dirty string) {
	buildInfo = BuildInfo{Version: version, Commit: commit, Date: date, Dirty: dirty == "true"}
	rootCmd.Version = version
}

func (b BuildInfo) String() string {
	s := fmt.Sprintf("bunup %s (commit %s, built %s, %s/%s)", b.Version, b.Commit, b.Date, runtime.GOOS, runtime.GOARCH)
	if b.Dirty {
		s += " dirty"
	}
	return s
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bunup version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(buildInfo.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
