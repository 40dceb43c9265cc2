package cmd

import (
	"fmt"
	"os"

	"github.com/flanksource/bunup/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [version]",
	Short: "Create a bunup.yaml in the current directory",
	Long: `Create a bunup.yaml pinning a Bun version.

Examples:
  bunup init
  bunup init 1.1.38
  bunup init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initRun,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing bunup.yaml")
}

func initRun(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(config.ConfigFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigFile)
	}

	c := config.Default()
	if len(args) == 1 {
		c.Version = args[0]
	} else if overrides.Version != "" {
		c.Version = overrides.Version
	}
	c.System = overrides.System
	c.ForceBun = bunConfig != nil && bunConfig.ForceBun
	c.Scripts = map[string][]string{
		"dev": {"run", "dev"},
	}

	if err := c.Validate(); err != nil {
		return err
	}
	if err := config.Save(c, config.ConfigFile); err != nil {
		return err
	}

	fmt.Printf("✓ Created %s (bun@%s)\n", config.ConfigFile, c.Version)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'bunup setup' to install bun")
	fmt.Println("  2. Run 'bunup install' to install the project's packages")
	return nil
}
