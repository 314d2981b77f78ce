package model

// VoiceKey names a phrasing style used to render reports.
type VoiceKey string

// Built-in voices plus the user-templated custom voice.
const (
	VoiceDirect      VoiceKey = "direct"
	VoiceSupportive  VoiceKey = "supportive"
	VoiceAnalytical  VoiceKey = "analytical"
	VoiceMinimal     VoiceKey = "minimal"
	VoiceGentleNudge VoiceKey = "gentle_nudge"
	VoiceCustom      VoiceKey = "custom"
)

// DefaultVoice is used when a spot does not specify one.
const DefaultVoice = VoiceSupportive

// Voices lists every selectable voice in display order.
var Voices = []VoiceKey{
	VoiceDirect,
	VoiceSupportive,
	VoiceAnalytical,
	VoiceMinimal,
	VoiceGentleNudge,
	VoiceCustom,
}

// Valid reports whether the key names a known voice.
func (v VoiceKey) Valid() bool {
	switch v {
	case VoiceDirect, VoiceSupportive, VoiceAnalytical, VoiceMinimal, VoiceGentleNudge, VoiceCustom:
		return true
	}
	return false
}

// Description returns a short human description of the voice.
func (v VoiceKey) Description() string {
	switch v {
	case VoiceDirect:
		return "Just the facts, no fluff"
	case VoiceSupportive:
		return "Encouraging, acknowledges effort"
	case VoiceAnalytical:
		return "Spots patterns, references history"
	case VoiceMinimal:
		return "List only, no commentary"
	case VoiceGentleNudge:
		return "Soft suggestions for tough days"
	case VoiceCustom:
		return "Your own voice"
	}
	return ""
}
