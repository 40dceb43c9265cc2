package cmd

import (
	"fmt"

	"github.com/flanksource/bunup/pkg/installer"
	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
)

var uninstallAll bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <version>...",
	Short: "Remove installed Bun versions",
	Long: `Remove installed Bun versions from the install root.

Only the configured platform is removed unless --all-platforms is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveConfig()
		if err != nil {
			return err
		}

		p := r.Platform
		if uninstallAll {
			p = platform.Platform{}
		}
		for _, v := range args {
			if err := installer.Uninstall(r.Root, v, p); err != nil {
				return fmt.Errorf("failed to uninstall %s: %w", v, err)
			}
			logger.Infof("Removed bun@%s from %s", v, r.Root)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
	uninstallCmd.Flags().BoolVar(&uninstallAll, "all-platforms", false, "Remove every platform of the version")
}
