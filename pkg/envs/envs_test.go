package envs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sep = string(os.PathListSeparator)

func TestBuildChildEnvironment(t *testing.T) {
	exe := filepath.Join("opt", "bun", "1.1.0", "bun-linux-x64", "bun")
	dir := filepath.Dir(exe)

	tests := []struct {
		name      string
		caller    map[string]string
		system    map[string]string
		expectKey string
		expectVal string
	}{
		{
			name:      "caller PATH",
			caller:    map[string]string{"PATH": "/usr/bin", "HOME": "/home/u"},
			system:    map[string]string{"PATH": "/ignored"},
			expectKey: "PATH",
			expectVal: dir + sep + "/usr/bin",
		},
		{
			name:      "caller key spelling is kept",
			caller:    map[string]string{"Path": `C:\Windows`},
			system:    map[string]string{"PATH": "/ignored"},
			expectKey: "Path",
			expectVal: dir + sep + `C:\Windows`,
		},
		{
			name:      "falls back to system PATH",
			caller:    map[string]string{"HOME": "/home/u"},
			system:    map[string]string{"PATH": "/usr/bin"},
			expectKey: "PATH",
			expectVal: dir + sep + "/usr/bin",
		},
		{
			name:      "falls back to system Path",
			caller:    nil,
			system:    map[string]string{"Path": `C:\Windows`},
			expectKey: "PATH",
			expectVal: dir + sep + `C:\Windows`,
		},
		{
			name:      "no path anywhere",
			caller:    map[string]string{},
			system:    map[string]string{},
			expectKey: "PATH",
			expectVal: dir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := BuildChildEnvironment(exe, tt.caller, tt.system)
			assert.Equal(t, tt.expectVal, env[tt.expectKey])
			for k, v := range tt.caller {
				if k != tt.expectKey {
					assert.Equal(t, v, env[k])
				}
			}
		})
	}
}

func TestBuildChildEnvironmentDoesNotMutateCaller(t *testing.T) {
	caller := map[string]string{"PATH": "/usr/bin"}
	_ = BuildChildEnvironment("/opt/bun/bun", caller, nil)
	assert.Equal(t, "/usr/bin", caller["PATH"])
}

func TestBuildChildEnvironmentOnlyOneMixedCaseKey(t *testing.T) {
	env := BuildChildEnvironment("/opt/bun/bun", map[string]string{"pAtH": "/usr/bin"}, map[string]string{"PATH": "/sys"})
	assert.Equal(t, "/opt/bun"+sep+"/usr/bin", env["pAtH"])
	_, hasUpper := env["PATH"]
	assert.False(t, hasUpper)
}

func TestEnvironRoundTrip(t *testing.T) {
	env := FromEnviron([]string{"A=1", "B=x=y", "noequals", "A=2"})
	assert.Equal(t, map[string]string{"A": "2", "B": "x=y"}, env)
	assert.Equal(t, []string{"A=2", "B=x=y"}, ToEnviron(env))
}

func TestRenderEnvs(t *testing.T) {
	rendered, err := RenderEnvs(map[string]string{
		"BUN_INSTALL":     "{{.root}}/{{.version}}",
		"BUN_RUNTIME_TAG": "{{.platform}}",
	}, map[string]interface{}{
		"root":     "/opt/bun",
		"version":  "1.1.0",
		"platform": "linux-x64",
	})
	assert.NoError(t, err)
	assert.Equal(t, "/opt/bun/1.1.0", rendered["BUN_INSTALL"])
	assert.Equal(t, "linux-x64", rendered["BUN_RUNTIME_TAG"])
}

func TestMerge(t *testing.T) {
	assert.Equal(t,
		map[string]string{"A": "1", "B": "3"},
		Merge(map[string]string{"A": "1", "B": "2"}, map[string]string{"B": "3"}))
}
