package main

import (
	"errors"
	"os"

	"github.com/flanksource/bunup/cmd"
	"github.com/flanksource/bunup/pkg/launcher"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	dirty   = "false"
)

func main() {
	cmd.SetVersion(version, commit, date, dirty)
	if err := cmd.Execute(); err != nil {
		var exitErr *launcher.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
