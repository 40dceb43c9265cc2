package cmd

import (
	"strings"

	"github.com/flanksource/bunup/pkg/envs"
	"github.com/flanksource/bunup/pkg/launcher"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print shell exports that put the managed bun on PATH",
	Long: `Print the environment bun commands run with, as shell exports.

Examples:
  eval "$(bunup env)"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveConfig()
		if err != nil {
			return err
		}

		exe := executable
		if exe == "" {
			if exe, err = launcher.Resolve("", r.Version, r.Platform, r.Root); err != nil {
				return err
			}
		}

		system := envs.SystemEnv()
		child := envs.BuildChildEnvironment(exe, envs.Merge(system, r.Env), system)

		out := map[string]string{"BUN_EXECUTABLE": exe, "BUNUP_ROOT": r.Root}
		for k, v := range r.Env {
			out[k] = v
		}
		for k, v := range child {
			if strings.EqualFold(k, envs.PathKey) {
				out[k] = v
			}
		}
		envs.PrintEnvs(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
