package middleware

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/aretw0/cancelflow/pkg/ports"
)

// Mask replaces values whose key matches a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the patterns
// before they reach the store. Free-text feedback (e.g. the "comment" step) is the usual target.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, key string, record []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(record, &doc); err != nil {
		// Not a JSON object; nothing to mask.
		return m.next.Save(ctx, key, record)
	}

	if !maskMap(doc, m.patterns) {
		return m.next.Save(ctx, key, record)
	}

	masked, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return m.next.Save(ctx, key, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	return m.next.Load(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

// maskMap masks matching keys in place, recursing into nested objects.
// It reports whether anything changed.
func maskMap(m map[string]any, patterns []*regexp.Regexp) bool {
	changed := false
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			if maskMap(subMap, patterns) {
				changed = true
			}
			continue
		}
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				changed = true
				break
			}
		}
	}
	return changed
}
