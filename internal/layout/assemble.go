/**
 * Text assembly: turn grouped or flat segments into final page text.
 */

package layout

import (
	"regexp"
	"strings"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// normalizeWhitespace collapses runs of whitespace to single spaces and trims
// the ends. Internal single spaces and all non-whitespace characters pass
// through unchanged.
func normalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// AssembleLines renders clustered lines as page text: segments within a line
// are space-joined, each line is whitespace-normalized, lines are joined with
// single newlines. No trailing newline. Lines that normalize to empty still
// occupy a row, preserving vertical structure.
func AssembleLines(lines []Line) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		parts := make([]string, len(line))
		for j, seg := range line {
			parts[j] = seg.Text
		}
		rendered[i] = normalizeWhitespace(strings.Join(parts, " "))
	}
	return strings.Join(rendered, "\n")
}

// AssembleFlat renders segments as a single line: space-joined, then
// whitespace-normalized once.
func AssembleFlat(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return normalizeWhitespace(strings.Join(parts, " "))
}
