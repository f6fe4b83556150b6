package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cancelflow/internal/presentation/graph"
	"github.com/aretw0/cancelflow/pkg/catalog"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/dsl"
)

func TestGenerateMermaid_Cancel(t *testing.T) {
	got := graph.GenerateMermaid(catalog.Cancel(), nil)

	for _, want := range []string{
		"graph TD\n",
		`reason(("reason"))`,
		`praise[/"praise"/]`,
		`comment(["comment"])`,
		`canceled[["canceled"]]`,
		`reason --> praise`,
		`praise -- "Many things – I'll be back" --> pause`,
		`praise -- "otherwise" --> comment`,
		`comment --> canceled`,
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "classDef")
}

func TestGenerateMermaid_Labels(t *testing.T) {
	b := dsl.New("start-here")
	b.Question("start-here").
		Options(`say "yes"`, "b", "c").
		WhenAny([]string{"b", "c"}, "end.step").
		Route(domain.Condition{Answer: `say "yes"`}, "gone").
		Go("end.step")
	b.Final("end.step").Text("bye")
	reg, err := b.Build()
	require.NoError(t, err)

	got := graph.GenerateMermaid(reg, nil)

	assert.Contains(t, got, `start_here(("start-here"))`)
	assert.Contains(t, got, `start_here -- "b | c" --> end_step`)
	assert.Contains(t, got, `start_here -. "say 'yes'" .-> gone`)
	assert.Contains(t, got, "class gone missing;")
}

func TestGenerateMermaid_MissingTargetListedOnce(t *testing.T) {
	b := dsl.New("start")
	b.Question("start").Options("a", "b").When("a", "ghost").Go("ghost")
	b.Comment("note").Go("ghost")
	reg, err := b.Build()
	require.NoError(t, err)

	got := graph.GenerateMermaid(reg, nil)

	assert.Equal(t, 3, strings.Count(got, ".-> ghost"))
	assert.Equal(t, 1, strings.Count(got, "class ghost missing;"))
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	reg := catalog.Cancel()
	state := domain.State{
		CurrentStepID: catalog.StepPause,
		Feedback: map[string]string{
			catalog.StepReason: catalog.ReasonOther,
			catalog.StepPraise: catalog.PraiseManyThings,
		},
	}

	overlay := graph.OverlayFromState(reg, state)
	assert.Equal(t, []string{catalog.StepPraise, catalog.StepReason}, overlay.VisitedSteps)

	got := graph.GenerateMermaid(reg, overlay)
	assert.Contains(t, got, "class reason visited;")
	assert.Contains(t, got, "class praise visited;")
	assert.Contains(t, got, "class pause current;")
	assert.Equal(t, 1, strings.Count(got, "current;"))
}
