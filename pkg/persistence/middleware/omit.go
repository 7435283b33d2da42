package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
)

type omitMiddleware struct {
	next     ports.HistoryStore
	patterns []*regexp.Regexp
}

// NewOmitMiddleware drops payload fields whose key matches one of the patterns before
// the entry is stored, e.g. "^plot_data$" to keep history small. Nested objects are
// visited too.
func NewOmitMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid omit pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &omitMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *omitMiddleware) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	if len(entry.Payload) > 0 && len(m.patterns) > 0 {
		var doc map[string]any
		if err := json.Unmarshal(entry.Payload, &doc); err == nil {
			omit(doc, m.patterns)
			stripped, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("failed to marshal payload: %w", err)
			}
			entry.Payload = stripped
		}
	}
	return m.next.Append(ctx, sessionID, entry)
}

func (m *omitMiddleware) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	return m.next.List(ctx, sessionID)
}

func (m *omitMiddleware) Trim(ctx context.Context, sessionID string, keep int) error {
	return m.next.Trim(ctx, sessionID, keep)
}

func (m *omitMiddleware) Clear(ctx context.Context, sessionID string) error {
	return m.next.Clear(ctx, sessionID)
}

func (m *omitMiddleware) Sessions(ctx context.Context) ([]string, error) {
	return m.next.Sessions(ctx)
}

func omit(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		matched := false
		for _, p := range patterns {
			if p.MatchString(k) {
				delete(m, k)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			omit(subMap, patterns)
		}
	}
}
