package cmd

import (
	"fmt"

	"github.com/flanksource/bunup/pkg/cache"
	"github.com/flanksource/bunup/pkg/config"
	"github.com/flanksource/bunup/pkg/installer"
	"github.com/flanksource/bunup/pkg/launcher"
	"github.com/flanksource/bunup/pkg/types"
	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup [version]",
	Short: "Download, verify and unpack Bun",
	Long: `Install the configured Bun version for the configured platform.

Nothing is downloaded when the version is already installed.

Examples:
  bunup setup                      # latest for this machine
  bunup setup 1.1.38               # a pinned version
  bunup setup --system linux-x64-musl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			bunConfig.Version = args[0]
		}
		r, err := resolveConfig()
		if err != nil {
			return err
		}

		result, err := setup(r)
		if result != nil {
			fmt.Println(result.Pretty().String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func newInstaller(r *config.Resolved) *installer.Installer {
	return installer.New(
		installer.WithRoot(r.Root),
		installer.WithInsecureSkipVerify(r.InsecureSkipVerify),
		installer.WithSkipChecksum(r.SkipChecksum),
		installer.WithDebug(debug),
		installer.WithLocator(r.Mirror),
		installer.WithCache(cache.New(r.CacheDir)),
	)
}

// setup installs the resolved version inside a clicky task and waits for it
func setup(r *config.Resolved) (*types.InstallResult, error) {
	inst := newInstaller(r)

	var (
		result     *types.InstallResult
		installErr error
	)
	task.StartTask(fmt.Sprintf("bun@%s", r.Version), func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		result, installErr = inst.Install(ctx.Context, r.Version, r.Platform, t)
		return result, installErr
	})

	if exitCode := clicky.WaitForGlobalCompletion(); exitCode != 0 && installErr == nil {
		installErr = fmt.Errorf("installation failed with exit code %d", exitCode)
	}
	return result, installErr
}

// ensureInstalled returns the executable to run, installing it first unless --executable is set
func ensureInstalled(r *config.Resolved) (string, error) {
	if executable != "" {
		return executable, nil
	}
	if _, err := setup(r); err != nil {
		return "", err
	}
	return launcher.Resolve("", r.Version, r.Platform, r.Root)
}
