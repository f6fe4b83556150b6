package dsl

import (
	"fmt"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// Builder manages the graph construction.
type Builder struct {
	initial string
	order   []string
	ids     []string // Declaration order
	steps   map[string]*StepBuilder
}

// New creates a new graph builder whose sessions start at initial.
func New(initial string) *Builder {
	return &Builder{
		initial: initial,
		steps:   make(map[string]*StepBuilder),
	}
}

// Question adds (or returns) a question step.
func (b *Builder) Question(id string) *StepBuilder {
	return b.add(id, domain.KindQuestion)
}

// Comment adds (or returns) a free-text step.
func (b *Builder) Comment(id string) *StepBuilder {
	return b.add(id, domain.KindComment)
}

// Final adds (or returns) a terminal step.
func (b *Builder) Final(id string) *StepBuilder {
	return b.add(id, domain.KindFinal)
}

func (b *Builder) add(id string, kind domain.Kind) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		sb.step.Kind = kind
		return sb
	}
	sb := &StepBuilder{step: domain.Step{ID: id, Kind: kind}}
	b.steps[id] = sb
	b.ids = append(b.ids, id)
	return sb
}

// Order sets the progress sequence.
// If never called, steps are numbered in declaration order.
func (b *Builder) Order(ids ...string) *Builder {
	b.order = ids
	return b
}

// Build compiles the graph into a Registry.
func (b *Builder) Build() (*registry.Registry, error) {
	order := b.order
	if order == nil {
		order = b.ids
	}

	steps := make([]domain.Step, 0, len(b.ids))
	for _, id := range b.ids {
		steps = append(steps, b.steps[id].Build())
	}

	reg, err := registry.New(b.initial, order, steps...)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	return reg, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *registry.Registry {
	reg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return reg
}
