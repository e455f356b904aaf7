package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// maxRepeat bounds the expansion of a single marker.
const maxRepeat = 999

var (
	repeatMarker = regexp.MustCompile(`\(\s*[×xX]\s*(\d+)\s*\)`)
	// A marker alone on its line, possibly inside emphasis quotes.
	standaloneMarker = regexp.MustCompile(`^\s*'*\s*\(\s*[×xX]\s*(\d+)\s*\)\s*'*\s*$`)
)

// ExpandRepeats expands "(×N)" repetition macros in a verse block.
// Paragraph markers run first so inline markers inside a repeated paragraph
// are multiplied by the outer count.
func ExpandRepeats(block string) string {
	return expandInline(expandParagraphs(block))
}

// expandParagraphs replaces a standalone "(×N)" line and the paragraph that
// follows it with N copies of that paragraph. A marker with nothing after it
// is dropped.
func expandParagraphs(block string) string {
	lines := strings.Split(block, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		m := standaloneMarker.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			continue
		}
		n := repeatCount(m[1])
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		start := j
		for j < len(lines) && strings.TrimSpace(lines[j]) != "" && !standaloneMarker.MatchString(lines[j]) {
			j++
		}
		paragraph := lines[start:j]
		for c := 0; c < n && len(paragraph) > 0; c++ {
			out = append(out, paragraph...)
		}
		i = j - 1
	}
	return strings.Join(out, "\n")
}

// expandInline replaces a line holding "prefix (×N)suffix" with N lines of
// "prefix suffix". Lines with several markers are expanded recursively.
func expandInline(block string) string {
	lines := strings.Split(block, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, expandLine(line)...)
	}
	return strings.Join(out, "\n")
}

func expandLine(line string) []string {
	loc := repeatMarker.FindStringSubmatchIndex(line)
	if loc == nil {
		return []string{line}
	}
	n := repeatCount(line[loc[2]:loc[3]])
	unit := joinUnit(line[:loc[0]], line[loc[1]:])
	if strings.TrimSpace(strings.Trim(unit, "'")) == "" {
		return nil
	}
	expanded := expandLine(unit)
	out := make([]string, 0, n*len(expanded))
	for c := 0; c < n; c++ {
		out = append(out, expanded...)
	}
	return out
}

func joinUnit(prefix, suffix string) string {
	prefix = strings.TrimSpace(prefix)
	suffix = strings.TrimSpace(suffix)
	switch {
	case prefix == "":
		return suffix
	case suffix == "":
		return prefix
	default:
		return prefix + " " + suffix
	}
}

// repeatCount reads the marker count. The marker is always consumed; counts
// above maxRepeat are clamped.
func repeatCount(digits string) int {
	n, err := strconv.Atoi(digits)
	if errors.Is(err, strconv.ErrRange) {
		return maxRepeat
	}
	if err != nil || n < 1 {
		return 1
	}
	if n > maxRepeat {
		return maxRepeat
	}
	return n
}
