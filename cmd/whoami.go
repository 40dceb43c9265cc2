package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show GitHub authentication status",
	Long:  `whoami shows which token bunup uses for the GitHub API and the remaining rate limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gh, err := newGitHubReleases()
		if err != nil {
			return err
		}

		status := gh.WhoAmI(cmd.Context())

		fmt.Printf("🔧 GitHub:\n")
		if status.TokenSource != "" {
			fmt.Printf("  Token Source: %s\n", status.TokenSource)
		} else {
			fmt.Printf("  Token Source: None (checked GITHUB_TOKEN, GH_TOKEN, GITHUB_ACCESS_TOKEN)\n")
		}

		if status.Authenticated {
			fmt.Printf("  Authenticated: ✅ Yes (%s)\n", status.Username)
		} else {
			fmt.Printf("  Authenticated: ❌ No\n")
		}
		if status.Error != "" {
			fmt.Printf("  Error: %s\n", status.Error)
		}

		if status.RateLimit != nil {
			fmt.Printf("\n📊 API Rate Limits:\n")
			fmt.Printf("  Remaining: %d/%d\n", status.RateLimit.Remaining, status.RateLimit.Total)
			if status.RateLimit.ResetTime != nil {
				fmt.Printf("  Resets in: %s\n", formatRateLimitDuration(time.Until(*status.RateLimit.ResetTime)))
			}
			if status.RateLimit.Remaining < 10 {
				fmt.Printf("  ⚠️  Warning: Low rate limit remaining\n")
			}
		}

		if !status.Authenticated {
			fmt.Printf("\n💡 Set GITHUB_TOKEN for authenticated access, no scopes are required\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// formatRateLimitDuration formats a duration in a human-readable way for rate limits
func formatRateLimitDuration(d time.Duration) string {
	if d < 0 {
		return "expired"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
