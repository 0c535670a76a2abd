package ui

import "fmt"

// Output helpers - use these for consistent styled output across commands.

// Title prints a styled title/header.
func Title(text string) {
	fmt.Println(TitleStyle.Render(text))
}

// Success prints a success message with checkmark.
func Success(text string) {
	fmt.Println(SuccessStyle.Render("✓ " + text))
}

// Error prints an error message.
func Error(text string) {
	fmt.Println(ErrorStyle.Render("✗ " + text))
}

// Warning prints a warning message.
func Warning(text string) {
	fmt.Println(WarningStyle.Render("! " + text))
}

// Dim prints dimmed/secondary text.
func Dim(text string) {
	fmt.Println(DimStyle.Render("  " + text))
}

// Command prints a CLI command the user should run next.
func Command(text string) {
	fmt.Println(CommandStyle.Render(text))
}

// Box prints text in a bordered box.
func Box(text string) {
	fmt.Println(BoxStyle.Render(text))
}

// URL prints a styled link.
func URL(text string) {
	fmt.Println(URLStyle.Render(text))
}

// Line prints an empty line.
func Line() {
	fmt.Println()
}

// Render functions - return the styled string without printing.

func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

func RenderSuccess(text string) string {
	return SuccessStyle.Render(text)
}

func RenderError(text string) string {
	return ErrorStyle.Render(text)
}

func RenderWarning(text string) string {
	return WarningStyle.Render(text)
}

func RenderDim(text string) string {
	return DimStyle.Render(text)
}

func RenderBold(text string) string {
	return BoldStyle.Render(text)
}

func RenderCommand(text string) string {
	return CommandStyle.Render(text)
}
