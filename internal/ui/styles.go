package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Panel border colors
var (
	focusedBorderColor   = lipgloss.Color("62")  // bright purple/blue
	unfocusedBorderColor = lipgloss.Color("240") // dim gray
	snoozeModeBorderColor = lipgloss.Color("214") // orange while picking a duration
)

// Status bar
var (
	statusBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("252"))
	statusBarAccentStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("62")).
		Bold(true)
	statusBarBadgeStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("196")).
		Foreground(lipgloss.Color("255")).
		Bold(true).
		Padding(0, 1)
)

// List item styles
var (
	itemTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	itemMetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	newBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("42")).
			Bold(true)
	pinnedMarkerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Bold(true)
	mineBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("62")).
			Bold(true)
)

// Snoozed tab styles
var (
	snoozeRemainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	snoozeSortStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
)

// Detail panel styles
var (
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	detailLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	detailValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	detailURLStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true)
	detailLangStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	detailStarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	labelChipStyle   = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("238")).
				Padding(0, 1)
)

// Diagnostics (empty inbox) styles
var (
	diagHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	diagRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Panel style builders
func panelStyle(focused bool, snoozeMode bool, width, height int) lipgloss.Style {
	borderColor := unfocusedBorderColor
	if focused {
		borderColor = focusedBorderColor
		if snoozeMode {
			borderColor = snoozeModeBorderColor
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width).
		Height(height)
}

func panelHeaderStyle(focused bool) lipgloss.Style {
	if focused {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
}

// Tab styles
func activeTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
}

func inactiveTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(0, 1)
}

// newLoadingSpinner creates a consistently styled spinner for loading states.
func newLoadingSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	return s
}

// renderEmptyState renders a consistent empty state message with optional action hint.
func renderEmptyState(message, hint string) string {
	msg := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(1, 2).
		Render("— " + message)
	if hint == "" {
		return msg
	}
	h := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true).
		Padding(0, 2).
		Render(hint)
	return lipgloss.JoinVertical(lipgloss.Left, msg, h)
}

// renderErrorWithHint renders a consistent error message with retry hint.
func renderErrorWithHint(errMsg, hint string) string {
	msg := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true).
		Padding(1, 2).
		Render(errMsg)
	if hint == "" {
		return msg
	}
	h := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(0, 2).
		Render(hint)
	return lipgloss.JoinVertical(lipgloss.Left, msg, h)
}

// formatUserError converts raw error strings into user-friendly messages.
func formatUserError(err string) string {
	lower := strings.ToLower(err)
	switch {
	case strings.Contains(lower, "no github token"):
		return "No GitHub token configured.\nSet GITHUB_TOKEN or add \"token\" to your config file."
	case strings.Contains(lower, "401") || strings.Contains(lower, "bad credentials"):
		return "GitHub rejected the token.\nGenerate a new token with the 'notifications' scope."
	case strings.Contains(lower, "403") || strings.Contains(lower, "rate limit"):
		return "GitHub rate limit reached or scope missing.\nWait a moment, or check the token's scopes."
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return "Request timed out.\nCheck your connection and try again."
	case strings.Contains(lower, "no such host") || strings.Contains(lower, "connection refused"):
		return "Network error.\nCheck your internet connection."
	default:
		return err
	}
}

// Scroll indicator style
var scrollIndicatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

// scrollIndicator returns a scroll position line for a viewport.
// Returns "" if all content fits within the viewport (no scrolling needed).
func scrollIndicator(vp viewport.Model, width int) string {
	if vp.TotalLineCount() <= vp.Height {
		return ""
	}
	pct := int(vp.ScrollPercent() * 100)
	var label string
	switch {
	case vp.AtTop():
		label = fmt.Sprintf("%d%% ▼", pct)
	case vp.AtBottom():
		label = fmt.Sprintf("▲ %d%%", pct)
	default:
		label = fmt.Sprintf("▲ %d%% ▼", pct)
	}
	return scrollIndicatorStyle.Render(
		lipgloss.PlaceHorizontal(width, lipgloss.Right, label),
	)
}
