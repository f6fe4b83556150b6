package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// OverlayFromState marks every answered step as visited and the current step as current.
func OverlayFromState(reg *registry.Registry, state domain.State) *GraphOverlay {
	o := &GraphOverlay{CurrentStep: state.CurrentStepID}
	for _, id := range reg.IDs() {
		if _, ok := state.Feedback[id]; ok {
			o.VisitedSteps = append(o.VisitedSteps, id)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart for a registry.
// Shapes follow the step kind:
// - Initial: ((Circle))
// - Question: [/Parallelogram/]
// - Comment: ([Stadium])
// - Final: [[Subroutine]]
// Targets that are not registered are drawn with a dashed edge and the missing class.
func GenerateMermaid(reg *registry.Registry, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var missing []string
	for _, step := range reg.Steps() {
		safeID := sanitizeMermaidID(step.ID)

		opener, closer := "[", "]"
		switch {
		case step.ID == reg.Initial():
			opener, closer = "((", "))"
		case step.Kind == domain.KindQuestion:
			opener, closer = "[/", "/]"
		case step.Kind == domain.KindComment:
			opener, closer = "([", "])"
		case step.Kind == domain.KindFinal:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, step.ID, closer)

		edge := func(label, to string) {
			safeTo := sanitizeMermaidID(to)
			registered := reg.Has(to)
			if !registered && !slices.Contains(missing, to) {
				missing = append(missing, to)
			}
			arrow := "-->"
			if label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
			}
			if !registered {
				arrow = "-.->"
				if label != "" {
					arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(label))
				}
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, safeTo)
		}

		for _, r := range step.Routes {
			edge(r.When.String(), r.To)
		}
		if step.Next != "" {
			label := ""
			if len(step.Routes) > 0 {
				label = "otherwise"
			}
			edge(label, step.Next)
		}
	}

	if len(missing) > 0 {
		sb.WriteString("\n    %% Undefined targets\n")
		sb.WriteString("    classDef missing fill:#ffcdd2,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, id := range missing {
			fmt.Fprintf(&sb, "    class %s missing;\n", sanitizeMermaidID(id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || id == overlay.CurrentStep {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
