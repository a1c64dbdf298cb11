// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     console
// Description: Styles for the interactive console
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package console

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel    = lipgloss.Color("#1E293B") // Slate 800
	ColorBgProgram  = lipgloss.Color("#1E3A5F")
	ColorText       = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted  = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDimmed = lipgloss.Color("#64748B") // Slate 500
)

var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)
)

// Transcript styles
var (
	ProgramStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorBgProgram).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary)

	OutputStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Padding(0, 2)

	FaultStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Padding(0, 2)

	TreeStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Padding(0, 2)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Padding(0, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	MetaStyle = lipgloss.NewStyle().
			Foreground(ColorTextDimmed)
)

// Panels
var (
	TranscriptPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorDimmed).
				Padding(0, 1)

	EditorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusFaultStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)
)

var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// Logo
const Logo = "calcscript console"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}
