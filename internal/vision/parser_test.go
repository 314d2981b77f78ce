package vision

import (
	"testing"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObserved(t *testing.T) {
	tests := []struct {
		wantLabels map[string]string
		name       string
		text       string
		wantMain   string
		wantErr    bool
	}{
		{
			name: "plain JSON",
			text: `{"labels": {"counter": "mug present", "sink": "empty"}, "notes": {"main": "One mug out."}}`,
			wantLabels: map[string]string{
				"counter": "mug present",
				"sink":    "empty",
			},
			wantMain: "One mug out.",
		},
		{
			name: "markdown fenced JSON",
			text: "```json\n{\"labels\": {\"desk\": \"clear\"}, \"notes\": {}}\n```",
			wantLabels: map[string]string{
				"desk": "clear",
			},
		},
		{
			name: "blank labels dropped",
			text: `{"labels": {"counter": "mug", "  ": "x", "floor": "  "}, "notes": {}}`,
			wantLabels: map[string]string{
				"counter": "mug",
			},
		},
		{
			name:     "literal null notes dropped",
			text:     `{"labels": {"desk": "clear"}, "notes": {"main": "ok", "pattern": "null"}}`,
			wantMain: "ok",
			wantLabels: map[string]string{
				"desk": "clear",
			},
		},
		{
			name:    "invalid JSON",
			text:    "the desk looks fine to me",
			wantErr: true,
		},
		{
			name:    "no labels at all",
			text:    `{"labels": {}, "notes": {"main": "hm"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed, err := parseObserved(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrAdapter)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLabels, observed.Observation.Labels)
			assert.Equal(t, tt.wantMain, observed.Notes.Main)
			assert.Empty(t, observed.Notes.Pattern)
		})
	}
}
