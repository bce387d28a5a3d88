package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	red  = color.New(color.FgRed, color.Bold).SprintFunc()
	bold = color.New(color.FgWhite, color.Bold).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	gray = color.New(color.FgHiBlack).SprintFunc()
)

// DisableColors disables colored output.
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables colored output.
func EnableColors() {
	color.NoColor = false
}

// Format returns the error formatted for terminal display.
func (e *TabdeckError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(red("ERROR "))
		b.WriteString(bold(e.Code + ": "))
	} else {
		b.WriteString(red("ERROR: "))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(gray("Cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *TabdeckError) FormatCompact() string {
	return e.Error()
}

type jsonError struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Detail     string   `json:"detail,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Cause      string   `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *TabdeckError) FormatJSON() string {
	je := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		je.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(je)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Fprint writes a formatted error to w.
func Fprint(w io.Writer, err error) {
	if te, ok := err.(*TabdeckError); ok {
		fmt.Fprint(w, te.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red("ERROR:"), err.Error())
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
