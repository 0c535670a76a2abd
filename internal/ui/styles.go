package ui

import "github.com/charmbracelet/lipgloss"

// ConveyDesk color palette, tuned for dark terminal backgrounds.
const (
	ColorWhite = "#FFFFFF"

	// Gray scale
	ColorGray300 = "#D2D7DF"
	ColorGray500 = "#6E7787"
	ColorGray600 = "#4F5661"
	ColorGray800 = "#232834"

	// Teal (brand primary)
	ColorTeal300 = "#7DE2D1"
	ColorTeal400 = "#4ECDC4"
	ColorTeal500 = "#2BB3A3"
	ColorTeal600 = "#1F8E85"

	// Green
	ColorGreen400 = "#63D78E"
	ColorGreen500 = "#3CC274"

	// Red
	ColorRed400 = "#F87171"
	ColorRed500 = "#EF4444"

	// Amber
	ColorAmber300 = "#F8D34C"
	ColorAmber400 = "#F9C424"

	// Blue
	ColorBlue300 = "#97C1FF"
	ColorBlue400 = "#639CFF"
)

var (
	// TitleStyle - for main headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorTeal500))

	// SuccessStyle - for success messages
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorGreen400))

	// ErrorStyle - for error messages
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorRed400))

	// WarningStyle - for warnings
	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorAmber400))

	// DimStyle - for secondary text
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorGray500))

	// BoldStyle - plain bold
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// CommandStyle - for CLI commands shown to the user
	CommandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorBlue400))

	// URLStyle - for links
	URLStyle = lipgloss.NewStyle().
			Underline(true).
			Foreground(lipgloss.Color(ColorTeal400))

	// BoxStyle - for bordered content boxes
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorTeal500)).
			Padding(0, 1)
)
