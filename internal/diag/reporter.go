// Package diag formats parse and verification diagnostics for terminal
// output.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders line-anchored diagnostics with their source context.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for a source file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders one error with the offending source line underlined.
func (r *Reporter) Format(line int, message string) string {
	var result strings.Builder

	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	result.WriteString(fmt.Sprintf("%s: %s\n", levelColor("error"), message))

	width := lineNumberWidth(line)
	indent := strings.Repeat(" ", width)
	result.WriteString(fmt.Sprintf("%s %s %s:%d\n",
		indent, dim("-->"), r.filename, line))

	if line < 1 || line > len(r.lines) {
		return result.String()
	}
	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
	if line > 1 {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, line-1)), dim("│"), r.lines[line-2]))
	}
	content := r.lines[line-1]
	result.WriteString(fmt.Sprintf("%s %s %s\n",
		bold(fmt.Sprintf("%*d", width, line)), dim("│"), content))
	marker := strings.Repeat("^", max(1, len(strings.TrimRight(content, " \t"))))
	result.WriteString(fmt.Sprintf("%s %s %s\n",
		indent, dim("│"), levelColor(marker)))
	if line < len(r.lines) {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, line+1)), dim("│"), r.lines[line]))
	}
	return result.String()
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
