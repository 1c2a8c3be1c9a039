// Package style defines the visual theme for the SkillMeat CLI.
// All colours, borders and text styles live here so that command output,
// validation reports and prompts share one look-and-feel.
//
// Call Init(colorEnabled) once at startup. After that, use the exported
// styles and helper functions freely.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ─── Colour palette ──────────────────────────────────────────────────────────

var (
	// Brand / primary
	Crimson = lipgloss.Color("#DC2647")
	Amber   = lipgloss.Color("#F59E0B")
	Violet  = lipgloss.Color("#8B5CF6")

	// Semantic
	Green  = lipgloss.Color("#22C55E")
	Yellow = lipgloss.Color("#FACC15")
	Red    = lipgloss.Color("#EF4444")

	// Neutral
	White  = lipgloss.Color("#FAFAFA")
	Dim    = lipgloss.Color("#6B7280")
	Subtle = lipgloss.Color("#374151")
)

// ─── Reusable text styles ────────────────────────────────────────────────────

var (
	// Title is used for top-level headings.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Crimson).
		PaddingBottom(1)

	// Subtitle is used for section headers in reports.
	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Amber)

	// Success style for positive confirmations.
	Success = lipgloss.NewStyle().
		Foreground(Green).
		Bold(true)

	// Warning style for non-fatal alerts.
	Warning = lipgloss.NewStyle().
		Foreground(Yellow)

	// Error style for error messages.
	Error = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	// DimText is used for hints, secondary info and reasons.
	DimText = lipgloss.NewStyle().
		Foreground(Dim)

	// Code style for inline identifiers: artifact names, hashes, paths.
	Code = lipgloss.NewStyle().
		Foreground(Violet)

	// Bold is a simple bold helper.
	Bold = lipgloss.NewStyle().Bold(true)
)

// ─── Component styles ────────────────────────────────────────────────────────

var (
	// TableHeader styles table column headers.
	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Amber).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Subtle)

	// TableCell is the default table cell style.
	TableCell = lipgloss.NewStyle().
			PaddingRight(2)

	// Box is a bordered container used around prompts and detail views.
	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Subtle).
		Padding(1, 2)

	// SpinnerColor is the colour used for spinner animations.
	SpinnerColor = Amber
)

// ─── Banner ──────────────────────────────────────────────────────────────────

// Banner returns the SkillMeat CLI ASCII banner.
func Banner() string {
	banner := `
 ____  _    _ _ _ __  __            _
/ ___|| | _(_) | |  \/  | ___  __ _| |_
\___ \| |/ / | | | |\/| |/ _ \/ _` + "`" + ` | __|
 ___) |   <| | | | |  | |  __/ (_| | |_
|____/|_|\_\_|_|_|_|  |_|\___|\__,_|\__|`

	return lipgloss.NewStyle().Foreground(Crimson).Bold(true).Render(banner)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Enabled tracks whether styles should render ANSI output.
// When false, all styles degrade to plain text.
var Enabled = true

// Init configures the style package. Call once at startup.
func Init(colorEnabled bool) {
	Enabled = colorEnabled
	if !colorEnabled {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// SuccessIcon returns a themed check mark.
func SuccessIcon() string {
	if Enabled {
		return Success.Render("✓")
	}
	return "OK"
}

// ErrorIcon returns a themed X mark.
func ErrorIcon() string {
	if Enabled {
		return Error.Render("✗")
	}
	return "ERROR"
}

// WarningIcon returns a themed warning indicator.
func WarningIcon() string {
	if Enabled {
		return Warning.Render("!")
	}
	return "WARN"
}

// Hint renders a "next step" hint message.
func Hint(msg string) string {
	return DimText.Render("→ " + msg)
}
