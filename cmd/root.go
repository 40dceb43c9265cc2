package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/flanksource/bunup/pkg/config"
	"github.com/flanksource/bunup/pkg/launcher"
	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
)

var (
	configFile   string
	overrides    config.Overrides
	insecure     bool
	forceBun     bool
	skipChecksum bool
	debug        bool
	executable   string
	bunConfig    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bunup",
	Short: "Install and run pinned versions of the Bun JavaScript runtime",
	Long: `bunup downloads a pinned Bun release for the current platform, verifies it
against the published sha256 and runs bun commands with it on PATH.

Versions are installed under <root>/<version>/bun-<platform>, so several
versions and platforms can live side by side.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Apply clicky flags after command line parsing
		clicky.Flags.UseFlags()

		var err error
		bunConfig, err = config.LoadOrDefault(configFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		flags := cmd.Flags()
		if flags.Changed("insecure") {
			overrides.InsecureSkipVerify = &insecure
		}
		if flags.Changed("force-bun") {
			overrides.ForceBun = &forceBun
		}
		if flags.Changed("skip-checksum") {
			overrides.SkipChecksum = &skipChecksum
		}
		bunConfig.Apply(overrides)

		if bunConfig.Path() != "" {
			logger.V(2).Infof("Using %s", bunConfig.Path())
		}
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	reportError(rootCmd.ErrOrStderr(), err)
	return err
}

// reportError prints err unless it is a bun exit status, which bun has
// already reported on its own output.
func reportError(w io.Writer, err error) {
	var exitErr *launcher.ExitError
	if err == nil || errors.As(err, &exitErr) {
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}

// resolveConfig returns the loaded configuration with command line overrides applied
func resolveConfig() (*config.Resolved, error) {
	if bunConfig == nil {
		bunConfig = config.Default().Apply(overrides)
	}
	return bunConfig.Resolve()
}

func init() {
	clicky.BindAllFlags(rootCmd.PersistentFlags(), "tasks", "!format")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to bunup.yaml (default: nearest bunup.yaml)")
	flags.StringVar(&overrides.Version, "bun-version", "", "Bun version to use (default: latest)")
	flags.StringVar(&overrides.System, "system", "", "Platform to install, e.g. linux-x64-musl (default: detected)")
	flags.StringVar(&overrides.Root, "root", "", "Install root (default: "+config.DefaultRoot+")")
	flags.StringVar(&overrides.WorkingDir, "working-dir", "", "Working directory for bun commands")
	flags.StringVar(&overrides.CacheDir, "cache-dir", "", "Shared download cache directory")
	flags.BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification for downloads")
	flags.BoolVar(&forceBun, "force-bun", false, "Expose bun as node and pass --bun to every command")
	flags.BoolVar(&skipChecksum, "skip-checksum", false, "Skip sha256 verification of the downloaded archive")
	flags.BoolVar(&debug, "debug", false, "Keep downloaded archives")
	flags.StringVar(&executable, "executable", "", "Run this bun executable instead of the managed install")
}
