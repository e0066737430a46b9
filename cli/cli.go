// Package cli implements the chatspace command tree and terminal output
// helpers.
package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/fatih/color"
)

var (
	// Colors for different types of output
	itemColor     = color.New(color.FgCyan)                // Cyan for listed items
	detailColor   = color.New(color.FgWhite)               // White for item details
	titleColor    = color.New(color.FgMagenta, color.Bold) // Bold magenta for titles
	successColor  = color.New(color.FgGreen)               // Green for confirmations
	activeColor   = color.New(color.FgHiGreen, color.Bold) // Bright green for the active marker
	separatorFace = color.New(color.FgHiBlack)             // Dark grey for separators

	width = goterm.Width()
)

// Separator printed to cli.
func Separator() {
	separator := strings.Repeat("-", width)
	separatorFace.Println(separator)
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := (width - len(title)) / 2
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", width-len(title)-len(separator1))
	output := fmt.Sprintf("%s%s%s", separator1, title, separator2)
	titleColor.Println(output)
}

// Item printed to cli.
func Item(text string, args ...any) {
	itemColor.Printf(text, args...)
}

// Detail printed to cli.
func Detail(text string, args ...any) {
	detailColor.Printf(text, args...)
}

// Success printed to cli.
func Success(text string, args ...any) {
	successColor.Printf(text, args...)
}

// ActiveMarker printed to cli.
func ActiveMarker(text string, args ...any) {
	activeColor.Printf(text, args...)
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	survey.AskOne(surveyQuestion, &confirm)
	return confirm
}
