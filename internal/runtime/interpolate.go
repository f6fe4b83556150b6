package runtime

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Interpolator renders step copy with session data.
type Interpolator func(ctx context.Context, text string, data map[string]any) (string, error)

// DefaultInterpolator uses text/template. Missing map keys render as zero values.
func DefaultInterpolator(ctx context.Context, text string, data map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("step").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return sb.String(), nil
}
