// Package model defines the core domain models used throughout the application.
package model

import "time"

// SpotStatus indicates the last known readiness of a spot.
type SpotStatus string

// Spot status constants.
const (
	StatusSorted         SpotStatus = "sorted"
	StatusNeedsAttention SpotStatus = "needs_attention"
	StatusUnknown        SpotStatus = "unknown"
	StatusChecking       SpotStatus = "checking"
	StatusError          SpotStatus = "error"
)

// Spot represents a physical location watched by one camera.
type Spot struct {
	CreatedAt         time.Time
	LastCheck         *time.Time
	Name              string
	CameraEntity      string
	Definition        string
	CustomVoicePrompt string
	Type              SpotType
	Voice             VoiceKey
	Status            SpotStatus
	ID                int64
}

// Validate checks that the spot has the fields required to run a check.
func (s *Spot) Validate() error {
	if s.Name == "" {
		return ErrMissingName
	}
	if s.CameraEntity == "" {
		return ErrMissingCamera
	}
	if !s.Voice.Valid() {
		return ErrUnknownVoice
	}
	return nil
}
