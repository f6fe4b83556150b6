package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cancelflow/pkg/catalog"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/dsl"
)

func TestValidate_Catalog(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		rep := Validate(catalog.Cancel())
		assert.True(t, rep.Valid, "errors: %v", rep.Errors)
		assert.Empty(t, rep.Errors)
		assert.Empty(t, rep.Warnings)
		assert.Empty(t, rep.Unreachable)
		assert.ElementsMatch(t,
			[]string{"reason", "praise", "pause", "chat", "comment", "canceled", "paused"},
			rep.Reachable)
		assert.Equal(t, "reason", rep.Reachable[0])
	})

	t.Run("retention", func(t *testing.T) {
		reg, err := catalog.Retention()
		require.NoError(t, err)

		rep := Validate(reg)
		assert.True(t, rep.Valid, "errors: %v", rep.Errors)
		assert.Empty(t, rep.Warnings)
		assert.Len(t, rep.Reachable, reg.Len())
	})
}

func TestValidate_UndefinedTarget(t *testing.T) {
	b := dsl.New("start")
	b.Question("start").Options("a", "b").When("b", "ghost").Go("end")
	b.Final("end")
	reg := b.MustBuild()

	rep := Validate(reg)

	assert.False(t, rep.Valid)
	require.NotEmpty(t, rep.Errors)
	assert.Contains(t, strings.Join(rep.Errors, "\n"), `"ghost"`)
	assert.Error(t, rep.Err())
	assert.Equal(t, []string{"start", "end"}, rep.Reachable)
}

func TestValidate_CommentToUndefinedTarget(t *testing.T) {
	b := dsl.New("start")
	b.Comment("start").Go("nowhere")
	reg := b.MustBuild()

	rep := Validate(reg)

	assert.False(t, rep.Valid)
	assert.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "nowhere")
}

func TestValidate_FeedbackBranchesAreChecked(t *testing.T) {
	// The second route only fires when "first" was answered "x", which the
	// empty-feedback option walk never sees.
	b := dsl.New("first")
	b.Question("first").Options("x", "y").Go("second")
	b.Question("second").Options("ok").
		Route(dsl.Feedback("first", "x"), "hidden").
		Go("end")
	b.Final("end")
	reg := b.MustBuild()

	rep := Validate(reg)

	assert.False(t, rep.Valid)
	assert.Contains(t, strings.Join(rep.Errors, "\n"), `"hidden"`)
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *dsl.Builder
		warning string
		check   func(t *testing.T, unreachable, missing, extra []string)
	}{
		{
			name: "unreachable step",
			build: func() *dsl.Builder {
				b := dsl.New("start")
				b.Question("start").Options("go").Go("end")
				b.Final("end")
				b.Final("orphan")
				return b
			},
			warning: `step "orphan" is unreachable`,
			check: func(t *testing.T, unreachable, _, extra []string) {
				assert.Equal(t, []string{"orphan"}, unreachable)
				assert.Equal(t, []string{"orphan"}, extra)
			},
		},
		{
			name: "reachable step missing from order",
			build: func() *dsl.Builder {
				b := dsl.New("start")
				b.Question("start").Options("go").Go("end")
				b.Final("end")
				b.Order("start")
				return b
			},
			warning: `"end" is missing from the progress sequence`,
			check: func(t *testing.T, _, missing, _ []string) {
				assert.Equal(t, []string{"end"}, missing)
			},
		},
		{
			name: "unregistered id in order",
			build: func() *dsl.Builder {
				b := dsl.New("start")
				b.Question("start").Options("go").Go("end")
				b.Final("end")
				b.Order("start", "legacy", "end")
				return b
			},
			warning: `unregistered step "legacy"`,
			check: func(t *testing.T, _, _, extra []string) {
				assert.Equal(t, []string{"legacy"}, extra)
			},
		},
		{
			name: "duplicate id in order",
			build: func() *dsl.Builder {
				b := dsl.New("start")
				b.Question("start").Options("go").Go("end")
				b.Final("end")
				b.Order("start", "end", "end")
				return b
			},
			warning: `lists "end" more than once`,
		},
		{
			name: "route on undeclared option",
			build: func() *dsl.Builder {
				b := dsl.New("start")
				b.Question("start").Options("go").When("gone", "end").Go("end")
				b.Final("end")
				return b
			},
			warning: `undeclared option "gone"`,
		},
		{
			name: "route catches out-of-domain answers",
			build: func() *dsl.Builder {
				b := dsl.New("start")
				b.Question("start").Options("go", "stay").
					When("stay", "end").
					Route(domain.Condition{}, "end").
					Go("end")
				b.Final("end")
				return b
			},
			warning: `route 1 (always) catches out-of-domain answers`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Validate(tt.build().MustBuild())

			assert.True(t, rep.Valid, "warnings must not invalidate: %v", rep.Errors)
			assert.Contains(t, strings.Join(rep.Warnings, "\n"), tt.warning)
			if tt.check != nil {
				tt.check(t, rep.Unreachable, rep.MissingFromOrder, rep.ExtraInOrder)
			}
		})
	}
}

func TestValidate_OutOfDomainDefault(t *testing.T) {
	b := dsl.New("start")
	b.Question("start").Options("a").When("a", "end").Go("void")
	b.Final("end")

	rep := Validate(b.MustBuild())

	assert.False(t, rep.Valid)
	assert.Equal(t, []string{`step "start": default (taken by out-of-domain answers) leads to undefined step "void"`}, rep.Errors)
	assert.Empty(t, rep.Warnings)
}

func TestPaths_Cancel(t *testing.T) {
	paths := Paths(catalog.Cancel())

	// 5 reasons × (pause: 2, chat: 2, three praises to comment: 3).
	require.Len(t, paths, 35)
	for _, p := range paths {
		assert.False(t, p.Cycle)
		assert.Empty(t, p.Err)
		assert.Contains(t, []string{"canceled", "paused"}, p.Final(), p.String())
		assert.Equal(t, "reason", p.Steps[0])
		assert.Len(t, p.Answers, len(p.Steps)-1)
	}

	first := paths[0]
	assert.Equal(t, []string{"reason", "praise", "pause", "paused"}, first.Steps)
	assert.Equal(t, "reason [Not useful right now] → praise [Many things – I'll be back] → pause [Pause my subscription] → paused", first.String())
}

func TestPaths_Retention(t *testing.T) {
	reg, err := catalog.Retention()
	require.NoError(t, err)

	finals := map[string]int{}
	for _, p := range Paths(reg) {
		assert.Empty(t, p.Err, p.String())
		finals[p.Final()]++
	}
	assert.Positive(t, finals["retained"])
	assert.Positive(t, finals["canceled"])
	assert.Len(t, finals, 2)
}

func TestPaths_CycleAndError(t *testing.T) {
	b := dsl.New("a")
	b.Question("a").Options("loop", "broken").When("broken", "ghost").Go("b")
	b.Comment("b").Go("a")
	reg := b.MustBuild()

	paths := Paths(reg)
	require.Len(t, paths, 2)

	assert.True(t, paths[0].Cycle)
	assert.Equal(t, []string{"a", "b", "a"}, paths[0].Steps)
	assert.Equal(t, []string{"loop", ""}, paths[0].Answers)

	assert.Contains(t, paths[1].Err, "ghost")
	assert.Equal(t, []string{"a"}, paths[1].Steps)
}
