package model

import "time"

// Observation is one structured snapshot reading from the vision adapter:
// a mapping of detected item label to a short description of its state.
// The engine never sees raw image bytes.
type Observation struct {
	CapturedAt time.Time
	Labels     map[string]string
	SourceRef  string
}

// Empty reports whether the observation carries no usable payload.
func (o *Observation) Empty() bool {
	return o == nil || len(o.Labels) == 0
}
