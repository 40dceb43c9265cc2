package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/flanksource/bunup/pkg/launcher"
	"github.com/flanksource/bunup/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecArgs(t *testing.T) {
	scripts := map[string][]string{
		"lint": {"x", "eslint", "."},
		"dev":  {"run", "dev"},
	}

	tests := []struct {
		name     string
		dash     int
		args     []string
		expected []string
		errMsg   string
	}{
		{name: "named script", dash: -1, args: []string{"lint"}, expected: []string{"x", "eslint", "."}},
		{name: "named script with extra args", dash: 1, args: []string{"lint", "--fix"}, expected: []string{"x", "eslint", ".", "--fix"}},
		{name: "raw args after dash", dash: 0, args: []string{"x", "prettier"}, expected: []string{"x", "prettier"}},
		{name: "unknown script", dash: -1, args: []string{"lnt"}, errMsg: "available: dev, lint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execArgs(tt.dash, tt.args, scripts)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("does not modify the configured script", func(t *testing.T) {
		_, err := execArgs(1, []string{"dev", "--port", "3000"}, scripts)
		require.NoError(t, err)
		assert.Equal(t, []string{"run", "dev"}, scripts["dev"])
	})

	t.Run("no scripts configured", func(t *testing.T) {
		_, err := execArgs(-1, []string{"lint"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bunup exec --")
	})
}

func TestFilterReleases(t *testing.T) {
	releases := []types.Release{
		{Version: "1.1.0"},
		{Version: "1.2.0-canary.1", Prerelease: true},
		{Version: "1.1.10"},
		{Version: "1.0.36"},
	}

	got, err := filterReleases(releases, "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.10", "1.1.0", "1.0.36"}, versionsOf(got))

	got, err = filterReleases(releases, "~1.1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.10", "1.1.0"}, versionsOf(got))

	got, err = filterReleases(releases, "", true)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0-canary.1", got[0].Version)

	_, err = filterReleases(releases, "not valid!", false)
	assert.Error(t, err)
}

func versionsOf(releases []types.Release) []string {
	var out []string
	for _, r := range releases {
		out = append(out, r.Version)
	}
	return out
}

func TestFormatRateLimitDuration(t *testing.T) {
	assert.Equal(t, "expired", formatRateLimitDuration(-time.Second))
	assert.Equal(t, "42s", formatRateLimitDuration(42*time.Second))
	assert.Equal(t, "2m 5s", formatRateLimitDuration(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h 0m 1s", formatRateLimitDuration(time.Hour+time.Second))
}

func TestBuildInfo(t *testing.T) {
	info := BuildInfo{Version: "1.0.0", Commit: "abc123", Date: "2024-01-01", Dirty: true}
	s := info.String()
	assert.Contains(t, s, "bunup 1.0.0")
	assert.Contains(t, s, "commit abc123")
	assert.Contains(t, s, "dirty")
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"setup", "install", "build", "test", "run", "add", "exec", "list", "platforms", "releases", "uninstall", "env", "version", "whoami", "init"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestReportError(t *testing.T) {
	var out bytes.Buffer
	reportError(&out, nil)
	assert.Empty(t, out.String())

	exitErr := &launcher.ExitError{Command: "bun run build", Code: 1}
	reportError(&out, fmt.Errorf("build: %w", exitErr))
	assert.Empty(t, out.String())

	reportError(&out, errors.New("error loading config: bad yaml"))
	assert.Equal(t, "Error: error loading config: bad yaml\n", out.String())
}

func TestRootSilencesCobraErrors(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}
