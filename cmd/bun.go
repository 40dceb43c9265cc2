package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flanksource/bunup/pkg/envs"
	"github.com/flanksource/bunup/pkg/launcher"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [-- bun flags...]",
	Short: "Run bun install",
	Long: `Install the project's packages with the managed bun.

Examples:
  bunup install
  bunup install -- --frozen-lockfile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBun(cmd, append([]string{"install"}, args...)...)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [-- args...]",
	Short: "Run bun run build",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBun(cmd, append([]string{"run", "build"}, args...)...)
	},
}

var testCmd = &cobra.Command{
	Use:   "test [-- bun test flags...]",
	Short: "Run bun test",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBun(cmd, append([]string{"test"}, args...)...)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <script> [-- args...]",
	Short: "Run a package.json script or file with bun run",
	Long: `Run a package.json script or a file with the managed bun.

Examples:
  bunup run dev
  bunup run index.ts -- --port 3000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBun(cmd, append([]string{"run"}, args...)...)
	},
}

var addCmd = &cobra.Command{
	Use:   "add <package>... [-- bun add flags...]",
	Short: "Add packages with bun add",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBun(cmd, append([]string{"add"}, args...)...)
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <script> | -- <bun args...>",
	Short: "Run a script from bunup.yaml or arbitrary bun arguments",
	Long: `Run a named argument list from the scripts section of bunup.yaml, or
pass arguments straight to bun after --.

Examples:
  bunup exec lint
  bunup exec -- x prettier --check .`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bunArgs, err := execArgs(cmd.ArgsLenAtDash(), args, bunConfig.Scripts)
		if err != nil {
			return err
		}
		return runBun(cmd, bunArgs...)
	},
}

func init() {
	rootCmd.AddCommand(installCmd, buildCmd, testCmd, runCmd, addCmd, execCmd)
}

// execArgs expands a named script followed by extra arguments, or returns the
// arguments after -- verbatim
func execArgs(dash int, args []string, scripts map[string][]string) ([]string, error) {
	if dash == 0 {
		return args, nil
	}

	script, ok := scripts[args[0]]
	if !ok {
		if len(scripts) == 0 {
			return nil, fmt.Errorf("unknown script %q: bunup.yaml defines no scripts, use `bunup exec -- <args>`", args[0])
		}
		names := make([]string, 0, len(scripts))
		for name := range scripts {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown script %q (available: %s)", args[0], strings.Join(names, ", "))
	}
	return append(append([]string{}, script...), args[1:]...), nil
}

// runBun installs bun when needed and runs it with args, returning *launcher.ExitError on a non-zero exit
func runBun(cmd *cobra.Command, args ...string) error {
	r, err := resolveConfig()
	if err != nil {
		return err
	}

	exe, err := ensureInstalled(r)
	if err != nil {
		return err
	}

	l := launcher.New(launcher.WithSignalForwarding(true))
	_, err = l.Launch(cmd.Context(), launcher.Command{
		Executable: exe,
		Args:       args,
		WorkingDir: r.WorkingDir,
		Env:        envs.Merge(envs.SystemEnv(), r.Env),
		Alias:      r.ForceBun,
		Platform:   r.Platform,
	})
	return err
}
