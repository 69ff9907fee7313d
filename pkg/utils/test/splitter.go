package testutils

import (
	"context"
	"fmt"
	"strings"
)

// MockSplitter is a test splitter that splits narratives on periods.
type MockSplitter struct {
	// Facts, when set, is returned verbatim for every input.
	Facts []string

	// Fail causes Split to return an error.
	Fail bool
}

func NewMockSplitter() *MockSplitter {
	return &MockSplitter{}
}

func (m *MockSplitter) Split(_ context.Context, text string) ([]string, error) {
	if m.Fail {
		return nil, fmt.Errorf("mock splitter failure")
	}

	if len(m.Facts) > 0 {
		return m.Facts, nil
	}

	parts := strings.Split(text, ".")
	facts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			facts = append(facts, p)
		}
	}
	if len(facts) == 0 {
		facts = []string{text}
	}
	return facts, nil
}
