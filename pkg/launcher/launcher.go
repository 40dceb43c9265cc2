package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/flanksource/bunup/pkg/envs"
	"github.com/flanksource/bunup/pkg/extract"
	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/release"
	"github.com/flanksource/bunup/pkg/version"
	"github.com/flanksource/commons/logger"
)

// Resolve returns the executable to launch: explicit when set, otherwise the
// one installed under root for version and platform.
func Resolve(explicit, v string, p platform.Platform, root string) (string, error) {
	if explicit != "" {
		return absExecutable(explicit)
	}

	v = version.Normalize(v)
	dir := release.InstallDir(root, v, p)
	if exe, ok := extract.FindExecutable(dir, p.Executable); ok {
		return absExecutable(exe)
	}
	return "", fmt.Errorf("%w: no %s for %s (%s) in %s, run `bunup setup` first", ErrNotInstalled, p.Executable, v, p.Name, dir)
}

// absExecutable makes a path absolute so it survives a change of working
// directory. Bare names are left for PATH lookup.
func absExecutable(exe string) (string, error) {
	if !strings.ContainsAny(exe, `/\`) {
		return exe, nil
	}
	abs, err := filepath.Abs(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", exe, err)
	}
	return abs, nil
}

// Command describes one Bun invocation
type Command struct {
	Executable string
	Args       []string
	// WorkingDir defaults to the current directory
	WorkingDir string
	// Env is the caller environment, nil inherits the system environment
	Env map[string]string
	// Alias exposes the executable as node next to itself and forces --bun
	Alias bool
	// Platform picks the alias name, zero uses the host OS
	Platform platform.Platform

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	return strings.TrimSpace(filepath.Base(c.Executable) + " " + strings.Join(c.Args, " "))
}

// Launcher spawns Bun processes with the managed install on PATH
type Launcher struct {
	systemEnv      map[string]string
	forwardSignals bool
}

type Option func(*Launcher)

// WithSystemEnv replaces the process environment used for PATH fallback
func WithSystemEnv(env map[string]string) Option {
	return func(l *Launcher) {
		l.systemEnv = env
	}
}

// WithSignalForwarding relays interrupt and terminate signals to the child
func WithSignalForwarding(forward bool) Option {
	return func(l *Launcher) {
		l.forwardSignals = forward
	}
}

func New(opts ...Option) *Launcher {
	l := &Launcher{}
	for _, opt := range opts {
		opt(l)
	}
	if l.systemEnv == nil {
		l.systemEnv = envs.SystemEnv()
	}
	return l
}

// Launch runs cmd to completion with inherited stdio and returns its exit
// code. Start failures return *SpawnError, non-zero exits return *ExitError.
// Alias creation problems are logged and never fail the launch.
func (l *Launcher) Launch(ctx context.Context, cmd Command) (int, error) {
	exe, err := absExecutable(cmd.Executable)
	if err != nil {
		return -1, &SpawnError{Executable: cmd.Executable, Err: err}
	}
	cmd.Executable = exe

	args := cmd.Args
	if cmd.Alias {
		if _, err := CreateAlias(cmd.Executable, AliasName(cmd.Platform)); err != nil {
			logger.Warnf("Could not create node alias: %v", err)
		}
		args = WithAliasFlag(args)
	}

	callerEnv := cmd.Env
	if callerEnv == nil {
		callerEnv = l.systemEnv
	}
	env := envs.BuildChildEnvironment(cmd.Executable, callerEnv, l.systemEnv)

	// #nosec G204 - the executable is the managed bun install or an explicit override
	c := exec.CommandContext(ctx, cmd.Executable, args...)
	c.Dir = cmd.WorkingDir
	c.Env = envs.ToEnviron(env)
	c.Stdin = orDefault(cmd.Stdin, os.Stdin)
	c.Stdout = orWriter(cmd.Stdout, os.Stdout)
	c.Stderr = orWriter(cmd.Stderr, os.Stderr)

	logger.V(2).Infof("Running %s in %s", Command{Executable: cmd.Executable, Args: args}, workingDir(cmd.WorkingDir))

	if err := c.Start(); err != nil {
		return -1, &SpawnError{Executable: cmd.Executable, Err: err}
	}

	if l.forwardSignals {
		stop := forwardSignals(c.Process)
		defer stop()
	}

	err = c.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			code = 1
		}
		return code, &ExitError{Command: Command{Executable: cmd.Executable, Args: args}.String(), Code: code}
	}
	return -1, &SpawnError{Executable: cmd.Executable, Err: err}
}

func forwardSignals(p *os.Process) func() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case s := <-c:
			if runtime.GOOS != "windows" {
				_ = p.Signal(s)
			} else {
				_ = p.Kill()
			}
		case <-done:
		}
	}()
	return func() {
		signal.Stop(c)
		close(done)
	}
}

func workingDir(dir string) string {
	if dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func orDefault(r io.Reader, def io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return def
}

func orWriter(w io.Writer, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
