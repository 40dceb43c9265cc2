package installer

import (
	"os"

	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/clicky/task"
)

// CleanupManager removes intermediate files once an install finishes, unless debugging
type CleanupManager struct {
	debug bool
	files []string
	task  *task.Task
}

func NewCleanupManager(debug bool, t *task.Task) *CleanupManager {
	return &CleanupManager{debug: debug, task: t}
}

// AddFile adds a file to be cleaned up
func (cm *CleanupManager) AddFile(path string) {
	if path != "" {
		cm.files = append(cm.files, path)
	}
}

// Cleanup removes every registered file. Failures are logged, never returned.
func (cm *CleanupManager) Cleanup() {
	if cm.debug {
		if cm.task != nil {
			for _, path := range cm.files {
				cm.task.Debugf("Install: keeping %s for debugging", utils.LogPath(path))
			}
		}
		return
	}

	for _, file := range cm.files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) && cm.task != nil {
			cm.task.V(4).Infof("Failed to clean up file %s: %v", utils.LogPath(file), err)
		}
	}
}
