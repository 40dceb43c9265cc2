package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/commons/logger"
)

// AliasFlag makes Bun handle scripts itself when invoked through the node alias
const AliasFlag = "--bun"

var (
	aliasPollAttempts = 20
	aliasPollInterval = 50 * time.Millisecond
)

// AliasName is the name tools look up when they spawn node
func AliasName(p platform.Platform) string {
	if p.IsZero() {
		if runtime.GOOS == "windows" {
			return "node.exe"
		}
		return "node"
	}
	if p.IsWindows() {
		return "node.exe"
	}
	return "node"
}

// CreateAlias makes executable reachable as aliasName in the same directory.
// An existing alias is left as is. Otherwise a hard link is tried first,
// falling back to a copy with mode 0755. The call then waits up to one second
// for the alias to become readable and returns its path either way.
func CreateAlias(executable, aliasName string) (string, error) {
	alias := filepath.Join(filepath.Dir(executable), aliasName)

	if _, err := os.Lstat(alias); os.IsNotExist(err) {
		if linkErr := os.Link(executable, alias); linkErr != nil {
			logger.V(3).Infof("Hard link %s -> %s failed (%v), copying", alias, executable, linkErr)
			if err := utils.CopyFile(executable, alias, 0755); err != nil {
				return "", fmt.Errorf("failed to create %s alias for %s: %w", aliasName, executable, err)
			}
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", alias, err)
	}

	for i := 0; i < aliasPollAttempts; i++ {
		if isReadable(alias) {
			return alias, nil
		}
		time.Sleep(aliasPollInterval)
	}

	logger.Warnf("Alias %s is not visible yet, continuing", alias)
	return alias, nil
}

func isReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// WithAliasFlag returns args with every --bun removed and a single one placed first
func WithAliasFlag(args []string) []string {
	out := make([]string, 0, len(args)+1)
	out = append(out, AliasFlag)
	for _, a := range args {
		if a != AliasFlag {
			out = append(out, a)
		}
	}
	return out
}
