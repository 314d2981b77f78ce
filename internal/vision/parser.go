package vision

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// rawObserved is the JSON shape the model is instructed to return.
type rawObserved struct {
	Labels map[string]string `json:"labels"`
	Notes  struct {
		Main          string `json:"main"`
		Pattern       string `json:"pattern"`
		Encouragement string `json:"encouragement"`
	} `json:"notes"`
}

// parseObserved turns raw model text into a validated Observed. Models wrap
// JSON in markdown fences often enough that stripping them is part of the
// contract.
func parseObserved(text string) (*Observed, error) {
	text = cleanMarkdownWrapper(text)

	var raw rawObserved
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from model: %v", common.ErrAdapter, err)
	}

	labels := make(map[string]string, len(raw.Labels))
	for label, desc := range raw.Labels {
		label = strings.TrimSpace(label)
		desc = strings.TrimSpace(desc)
		if label == "" || desc == "" {
			continue
		}
		labels[label] = desc
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: model returned no labels", common.ErrAdapter)
	}

	return &Observed{
		Observation: &model.Observation{
			Labels:     labels,
			CapturedAt: time.Now(),
		},
		Notes: model.CheckNotes{
			Main:          nullSafe(raw.Notes.Main),
			Pattern:       nullSafe(raw.Notes.Pattern),
			Encouragement: nullSafe(raw.Notes.Encouragement),
		},
	}, nil
}

// cleanMarkdownWrapper strips ```json fences the model may add despite
// instructions.
func cleanMarkdownWrapper(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// nullSafe drops the literal "null" some models emit for absent notes.
func nullSafe(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}
