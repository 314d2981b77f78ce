// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#7C9EF5")
	// SortedColor indicates a spot that is ready.
	SortedColor = lipgloss.Color("#4ECDC4") // Teal
	// AttentionColor indicates a spot that needs work.
	AttentionColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SortedStyle formats ready-state output.
	SortedStyle = lipgloss.NewStyle().
			Foreground(SortedColor)

	// AttentionStyle formats needs-attention output.
	AttentionStyle = lipgloss.NewStyle().
			Foreground(AttentionColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// ReportBoxStyle wraps a rendered check report.
	ReportBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)
)

// Icons.
const (
	SortedIcon    = "✓"
	AttentionIcon = "○"
	ErrorIcon     = "✗"
	SnoozeIcon    = "zz"
	StreakIcon    = "🔥"
	CameraIcon    = "📷"
)

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatStatus renders a spot status with its icon and color.
func FormatStatus(status model.SpotStatus) string {
	switch status {
	case model.StatusSorted:
		return SortedStyle.Render(SortedIcon + " sorted")
	case model.StatusNeedsAttention:
		return AttentionStyle.Render(AttentionIcon + " needs attention")
	case model.StatusChecking:
		return SubtleStyle.Render("… checking")
	case model.StatusError:
		return ErrorStyle.Render(ErrorIcon + " error")
	default:
		return SubtleStyle.Render("– unknown")
	}
}

// FormatStreak renders a streak counter, or an empty string when there is
// nothing to brag about.
func FormatStreak(current, best int) string {
	if current <= 0 && best <= 0 {
		return ""
	}
	if current > 0 {
		return AttentionStyle.Render(StreakIcon+" ") + BoldStyle.Render(strconv.Itoa(current)) + SubtleStyle.Render(" (best "+strconv.Itoa(best)+")")
	}
	return SubtleStyle.Render("best streak " + strconv.Itoa(best))
}

// RenderReport renders a composed check report inside a box headed by the
// spot name.
func RenderReport(spotName, report string) string {
	heading := TitleStyle.UnsetMargins().Render(spotName)
	return ReportBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, report))
}
