package template

import (
	"fmt"
	"strings"

	"github.com/flanksource/gomplate/v3"
	"github.com/google/cel-go/cel"
)

// RenderTemplate renders a Go template string using flanksource/gomplate
func RenderTemplate(templateStr string, data map[string]interface{}) (string, error) {
	result, err := gomplate.RunTemplate(data, gomplate.Template{
		Template: templateStr,
	})
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// RenderCELExpression evaluates a CEL expression with every key of data
// declared as a dynamic variable. The result is formatted as a string.
func RenderCELExpression(expression string, data map[string]interface{}) (string, error) {
	opts := make([]cel.EnvOption, 0, len(data))
	for name := range data {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return "", fmt.Errorf("CEL compilation failed: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return "", fmt.Errorf("CEL program creation failed: %w", err)
	}

	out, _, err := prg.Eval(data)
	if err != nil {
		return "", fmt.Errorf("CEL expression execution failed: %w", err)
	}
	return fmt.Sprint(out.Value()), nil
}

// isCELExpression checks if a string looks like a CEL expression rather than a URL template
func isCELExpression(expr string) bool {
	if strings.Contains(expr, "{{") {
		return false
	}
	return strings.Contains(expr, "\n") ||
		strings.Contains(expr, " ? ") ||
		strings.Contains(expr, " + ") ||
		strings.Contains(expr, "==") ||
		strings.Contains(expr, "!=")
}

// EvaluateCELOrTemplate evaluates a string as CEL if it looks like CEL, otherwise as a template
func EvaluateCELOrTemplate(expr string, data map[string]interface{}) (string, error) {
	if isCELExpression(expr) {
		return RenderCELExpression(expr, data)
	}
	return RenderTemplate(expr, data)
}

// URLData is the set of variables available to mirror URL templates
type URLData struct {
	// Version is the requested version, "latest" or e.g. "1.1.0"
	Version string
	// Tag is the release tag, e.g. bun-v1.1.0 (empty for latest)
	Tag string
	// Archive is the archive file name, e.g. bun-linux-x64.zip
	Archive string
	// Platform is the platform name, e.g. linux-x64
	Platform string
	// Latest is true when Version is "latest"
	Latest bool
}

func (d URLData) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"version":  d.Version,
		"tag":      d.Tag,
		"archive":  d.Archive,
		"platform": d.Platform,
		"latest":   d.Latest,
	}
}

// RenderURL renders a mirror URL template (Go template or CEL) and trims the result
func RenderURL(urlTemplate string, data URLData) (string, error) {
	out, err := EvaluateCELOrTemplate(urlTemplate, data.AsMap())
	if err != nil {
		return "", fmt.Errorf("failed to render url template %q: %w", urlTemplate, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("url template %q rendered an empty string", urlTemplate)
	}
	return out, nil
}
