package envs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flanksource/bunup/pkg/template"
)

// PathKey is the name used for the search path when neither the caller nor
// the system environment defines one.
const PathKey = "PATH"

// BuildChildEnvironment returns a copy of callerEnv with the directory of
// executable prepended to the search path, so child processes that spawn
// "bun" (or its node alias) resolve to the managed install. The existing value
// is looked up case-insensitively in callerEnv, then under PATH and Path in
// systemEnv; the result is stored under the caller's key spelling, or PATH.
func BuildChildEnvironment(executable string, callerEnv, systemEnv map[string]string) map[string]string {
	env := make(map[string]string, len(callerEnv)+1)
	for k, v := range callerEnv {
		env[k] = v
	}

	key, current, found := lookupPath(callerEnv)
	if !found {
		key = PathKey
		if v, ok := systemEnv["PATH"]; ok {
			current, found = v, true
		} else if v, ok := systemEnv["Path"]; ok {
			current, found = v, true
		}
	}

	dir := filepath.Dir(executable)
	if found && current != "" {
		env[key] = dir + string(os.PathListSeparator) + current
	} else {
		env[key] = dir
	}
	return env
}

func lookupPath(env map[string]string) (string, string, bool) {
	if v, ok := env[PathKey]; ok {
		return PathKey, v, true
	}
	// deterministic choice when several spellings are present
	keys := make([]string, 0, len(env))
	for k := range env {
		if strings.EqualFold(k, PathKey) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", "", false
	}
	sort.Strings(keys)
	return keys[0], env[keys[0]], true
}

// FromEnviron converts KEY=value pairs (os.Environ form) into a map. Later
// entries win. Entries without '=' are ignored.
func FromEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// ToEnviron converts a map into sorted KEY=value pairs
func ToEnviron(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// SystemEnv snapshots the environment of the current process
func SystemEnv() map[string]string {
	return FromEnviron(os.Environ())
}

// RenderEnvs renders environment variable values using template variables
func RenderEnvs(envs map[string]string, data map[string]interface{}) (map[string]string, error) {
	rendered := make(map[string]string, len(envs))
	for key, valueTemplate := range envs {
		value, err := template.RenderTemplate(valueTemplate, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render env var %s: %w", key, err)
		}
		rendered[key] = value
	}
	return rendered, nil
}

// Merge returns base overlaid with overrides
func Merge(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// PrintEnvs prints environment variables as shell export statements, sorted by name
func PrintEnvs(envs map[string]string) {
	keys := make([]string, 0, len(envs))
	for k := range envs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("export %s=%q\n", k, envs[k])
	}
}
