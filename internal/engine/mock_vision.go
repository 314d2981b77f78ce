package engine

import (
	"context"
	"sync"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/vision"
)

// MockVisionClient is a test implementation of the vision Client interface.
// It returns scripted observations in order and records every request.
type MockVisionClient struct {
	err       error
	responses []vision.Observed
	calls     []vision.ObservationRequest
	next      int
	mu        sync.Mutex
}

// NewMockVisionClient creates a mock vision client. With no scripted
// responses it returns an empty-but-valid observation.
func NewMockVisionClient() *MockVisionClient {
	return &MockVisionClient{}
}

// Script appends an observation the mock will return, one per call, in
// order. The last scripted response repeats once the script runs out.
func (m *MockVisionClient) Script(labels map[string]string, notes model.CheckNotes) *MockVisionClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, vision.Observed{
		Observation: &model.Observation{
			Labels:     labels,
			CapturedAt: time.Now(),
			SourceRef:  "mock",
		},
		Notes:        notes,
		ResponseTime: 5 * time.Millisecond,
	})
	return m
}

// Fail makes every subsequent Observe call return err.
func (m *MockVisionClient) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Observe returns the next scripted observation.
func (m *MockVisionClient) Observe(_ context.Context, req vision.ObservationRequest) (*vision.Observed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &vision.Observed{
			Observation: &model.Observation{
				Labels:     map[string]string{"scene": "nothing notable"},
				CapturedAt: time.Now(),
				SourceRef:  "mock",
			},
		}, nil
	}
	idx := m.next
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.next++
	resp := m.responses[idx]
	return &resp, nil
}

// Calls returns a copy of every request seen so far.
func (m *MockVisionClient) Calls() []vision.ObservationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]vision.ObservationRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ vision.Client = (*MockVisionClient)(nil)
