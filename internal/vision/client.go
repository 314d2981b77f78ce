// Package vision supplies structured observations of a spot: a camera
// snapshot judged by a multimodal model into per-item state descriptions.
// The engine never sees image bytes, only the structured result.
package vision

import (
	"context"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// ObservationRequest describes one look at a spot. The definition and voice
// ride along so the model can phrase its notes; the structured labels it
// returns are voice-independent.
type ObservationRequest struct {
	SpotName          string
	CameraEntity      string
	Definition        string
	CustomVoicePrompt string
	MemoryContext     string
	Voice             model.VoiceKey
}

// Observed is one complete adapter response.
type Observed struct {
	Observation  *model.Observation
	Notes        model.CheckNotes
	ResponseTime time.Duration
}

// Client defines the interface for vision providers.
type Client interface {
	Observe(ctx context.Context, req ObservationRequest) (*Observed, error)
}

// SnapshotSource produces raw camera frames. Implementations: Home
// Assistant camera proxy; tests use fixed bytes.
type SnapshotSource interface {
	Snapshot(ctx context.Context, entityID string) ([]byte, error)
}
