package bunup

import (
	"context"

	"github.com/flanksource/bunup/pkg/envs"
	"github.com/flanksource/bunup/pkg/installer"
	"github.com/flanksource/bunup/pkg/launcher"
	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/types"
	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
)

// Re-export commonly used types for public API
type (
	InstallResult = types.InstallResult
	InstallStatus = types.InstallStatus
	VerifyStatus  = types.VerifyStatus
	Platform      = platform.Platform
)

// Re-export status constants
const (
	InstallStatusInstalled        = types.InstallStatusInstalled
	InstallStatusAlreadyInstalled = types.InstallStatusAlreadyInstalled
	InstallStatusFailed           = types.InstallStatusFailed

	VerifyStatusChecksumMatch    = types.VerifyStatusChecksumMatch
	VerifyStatusChecksumMismatch = types.VerifyStatusChecksumMismatch
	VerifyStatusSkipped          = types.VerifyStatusSkipped
)

// Re-export installer options
type InstallOption = installer.InstallOption

var (
	WithRoot               = installer.WithRoot
	WithInsecureSkipVerify = installer.WithInsecureSkipVerify
	WithSkipChecksum       = installer.WithSkipChecksum
	WithDebug              = installer.WithDebug
	WithLocator            = installer.WithLocator
	WithCache              = installer.WithCache
	WithHTTPClient         = installer.WithHTTPClient
)

// Install installs Bun for the host platform inside a clicky task and returns
// the detailed result.
//
// Example:
//
//	result, err := bunup.Install("1.1.38", bunup.WithRoot(".bunup"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Pretty())
func Install(version string, opts ...InstallOption) (*InstallResult, error) {
	p, err := platform.Current()
	if err != nil {
		return nil, err
	}

	inst := installer.New(opts...)

	var result *InstallResult
	var installErr error

	task.StartTask("bun@"+version, func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		result, installErr = inst.Install(ctx.Context, version, p, t)
		return result, installErr
	})

	clicky.WaitForGlobalCompletion()

	return result, installErr
}

// InstallWithContext installs Bun for platform p without progress reporting
func InstallWithContext(ctx context.Context, version string, p Platform, opts ...InstallOption) (*InstallResult, error) {
	return installer.New(opts...).Install(ctx, version, p, nil)
}

// RunOptions configures Run
type RunOptions struct {
	WorkingDir string
	// Env replaces the inherited environment when set
	Env map[string]string
	// ForceBun exposes bun as node and passes --bun
	ForceBun bool
}

// Run installs Bun when needed and runs it with args, returning its exit code.
// A non-zero exit is returned with an error matching launcher.ErrNonZeroExit.
func Run(ctx context.Context, version string, p Platform, args []string, run RunOptions, opts ...InstallOption) (int, error) {
	result, err := InstallWithContext(ctx, version, p, opts...)
	if err != nil {
		return -1, err
	}

	env := run.Env
	if env == nil {
		env = envs.SystemEnv()
	}
	return launcher.New().Launch(ctx, launcher.Command{
		Executable: result.Executable,
		Args:       args,
		WorkingDir: run.WorkingDir,
		Env:        env,
		Alias:      run.ForceBun,
		Platform:   p,
	})
}
