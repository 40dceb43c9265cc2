package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/clicky/task"
)

// FindExecutable searches root depth-first for a regular file named name
// (case-insensitive). Entries are visited in directory order, which os.ReadDir
// sorts by file name, and subdirectories are descended as they are met. A
// missing or unreadable root is reported as not found.
func FindExecutable(root, name string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			if found, ok := FindExecutable(path, name); ok {
				return found, true
			}
			continue
		}
		if entry.Type().IsRegular() && strings.EqualFold(entry.Name(), name) {
			return path, true
		}
	}
	return "", false
}

// FindExecutableWithLogging is FindExecutable reporting the search outcome on t
func FindExecutableWithLogging(t *task.Task, root, name string) (string, bool) {
	path, ok := FindExecutable(root, name)
	utils.LogBinarySearch(t, root, name, ok, path)
	return path, ok
}
