package cmd

import (
	"github.com/flanksource/bunup/pkg/installer"
	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/clicky"
	"github.com/spf13/cobra"
)

// InstallationInfo is one row of `bunup list`
type InstallationInfo struct {
	Version    string `json:"version" pretty:"label=Version"`
	Platform   string `json:"platform" pretty:"label=Platform"`
	Size       string `json:"size" pretty:"label=Size"`
	Executable string `json:"executable" pretty:"label=Executable"`
}

// InstallationList represents the installed versions for table display
type InstallationList struct {
	Installations []InstallationInfo `json:"installations" pretty:"table"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed Bun versions",
	RunE:  runList,
}

// PlatformInfo is one row of `bunup platforms`
type PlatformInfo struct {
	Name    string `json:"name" pretty:"label=Platform"`
	Archive string `json:"archive" pretty:"label=Archive"`
	Detect  string `json:"detect" pretty:"label=Detected"`
	Current string `json:"current" pretty:"label=Current"`
}

type PlatformList struct {
	Platforms []PlatformInfo `json:"platforms" pretty:"table"`
}

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the platforms Bun is published for",
	RunE:  runPlatforms,
}

func init() {
	rootCmd.AddCommand(listCmd, platformsCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := resolveConfig()
	if err != nil {
		return err
	}

	installs, err := installer.Installed(r.Root)
	if err != nil {
		return err
	}

	list := InstallationList{}
	for _, i := range installs {
		list.Installations = append(list.Installations, InstallationInfo{
			Version:    i.Version,
			Platform:   i.Platform.Name,
			Size:       utils.FormatBytes(i.Size),
			Executable: utils.LogPath(i.Executable),
		})
	}

	if len(list.Installations) == 0 {
		cmd.Printf("No Bun versions installed in %s\n", r.Root)
		return nil
	}

	result, err := clicky.Format(list)
	if err != nil {
		return err
	}
	cmd.Println(result)
	return nil
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	current, _ := platform.Current()

	list := PlatformList{}
	for _, p := range platform.All() {
		info := PlatformInfo{Name: p.Name, Archive: p.Archive, Detect: "no"}
		if p.Detectable {
			info.Detect = "yes"
		}
		if p == current {
			info.Current = "*"
		}
		list.Platforms = append(list.Platforms, info)
	}

	result, err := clicky.Format(list)
	if err != nil {
		return err
	}
	cmd.Println(result)
	return nil
}
