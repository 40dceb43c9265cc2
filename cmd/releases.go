package cmd

import (
	"time"

	bunhttp "github.com/flanksource/bunup/pkg/http"
	"github.com/flanksource/bunup/pkg/release"
	"github.com/flanksource/bunup/pkg/types"
	"github.com/flanksource/bunup/pkg/version"
	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
)

var (
	releasesLimit      int
	releasesConstraint string
	releasesPrerelease bool
	releasesNewest     bool
	githubToken        string
)

// ReleaseInfo is one row of `bunup releases`
type ReleaseInfo struct {
	Version    string `json:"version" pretty:"label=Version"`
	Published  string `json:"published" pretty:"label=Published"`
	Prerelease bool   `json:"prerelease" pretty:"label=Pre-release"`
}

type ReleaseList struct {
	Releases []ReleaseInfo `json:"releases" pretty:"table"`
}

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List published Bun versions",
	Long: `List Bun releases published on GitHub.

Set GITHUB_TOKEN (or GH_TOKEN) to raise the API rate limit.

Examples:
  bunup releases --limit 10
  bunup releases --constraint "~1.1"
  bunup releases --constraint "^1" --newest`,
	RunE: runReleases,
}

func init() {
	rootCmd.AddCommand(releasesCmd)
	releasesCmd.Flags().IntVar(&releasesLimit, "limit", 30, "Maximum number of releases to fetch (0 for all)")
	releasesCmd.Flags().StringVar(&releasesConstraint, "constraint", "", "Semver constraint to filter versions, e.g. \"~1.1\"")
	releasesCmd.Flags().BoolVar(&releasesPrerelease, "prerelease", false, "Include pre-releases")
	releasesCmd.Flags().BoolVar(&releasesNewest, "newest", false, "Print only the newest matching version")
	rootCmd.PersistentFlags().StringVar(&githubToken, "github-token", "", "GitHub token (default: GITHUB_TOKEN, GH_TOKEN or GITHUB_ACCESS_TOKEN)")
}

func newGitHubReleases() (*release.GitHubReleases, error) {
	r, err := resolveConfig()
	if err != nil {
		return nil, err
	}
	client := bunhttp.GetHttpClient(
		bunhttp.WithTimeout(30*time.Second),
		bunhttp.WithInsecureSkipVerify(r.InsecureSkipVerify),
	)
	return release.NewGitHubReleases(
		release.WithToken(githubToken),
		release.WithGitHubHTTPClient(client),
	)
}

// filterReleases keeps releases matching constraint, dropping pre-releases unless asked
func filterReleases(releases []types.Release, constraint string, prerelease bool) ([]types.Release, error) {
	byVersion := make(map[string]types.Release, len(releases))
	var versions []string
	for _, r := range releases {
		if r.Prerelease && !prerelease {
			continue
		}
		byVersion[r.Version] = r
		versions = append(versions, r.Version)
	}

	matched, err := version.Filter(versions, constraint)
	if err != nil {
		return nil, err
	}

	out := make([]types.Release, 0, len(matched))
	for _, v := range version.Sort(matched) {
		out = append(out, byVersion[v])
	}
	return out, nil
}

func runReleases(cmd *cobra.Command, args []string) error {
	gh, err := newGitHubReleases()
	if err != nil {
		return err
	}

	releases, rateLimit, err := gh.List(cmd.Context(), releasesLimit)
	if rateLimit != nil && rateLimit.Remaining < 10 {
		logger.Warnf("GitHub API rate limit low: %d/%d remaining", rateLimit.Remaining, rateLimit.Total)
	}
	if err != nil {
		return err
	}

	matched, err := filterReleases(releases, releasesConstraint, releasesPrerelease)
	if err != nil {
		return err
	}

	if releasesNewest {
		versions := make([]string, 0, len(matched))
		for _, r := range matched {
			versions = append(versions, r.Version)
		}
		newest, err := version.Newest(versions, !releasesPrerelease)
		if err != nil {
			return err
		}
		cmd.Println(newest)
		return nil
	}

	list := ReleaseList{}
	for _, r := range matched {
		info := ReleaseInfo{Version: r.Version, Prerelease: r.Prerelease}
		if !r.Published.IsZero() {
			info.Published = r.Published.Format("2006-01-02")
		}
		list.Releases = append(list.Releases, info)
	}

	result, err := clicky.Format(list)
	if err != nil {
		return err
	}
	cmd.Println(result)
	return nil
}
