package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledWord struct {
	s     string
	width int
}

// wrapWords breaks text on spaces so no line exceeds width columns, styling
// each word with render. Words longer than width get a line of their own.
func wrapWords(text string, width int, render func(string) string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	items := make([]styledWord, len(words))
	for i, w := range words {
		items[i] = styledWord{s: render(w), width: runewidth.StringWidth(w)}
	}
	if width <= 0 {
		return joinWords(items)
	}

	var out strings.Builder
	line := make([]styledWord, 0, len(items))
	lineWidth := 0
	for _, item := range items {
		next := lineWidth + item.width
		if len(line) > 0 {
			next++
		}
		if next > width && len(line) > 0 {
			out.WriteString(joinWords(line))
			out.WriteRune('\n')
			line = line[:0]
			next = item.width
		}
		line = append(line, item)
		lineWidth = next
	}
	out.WriteString(joinWords(line))
	return out.String()
}

func joinWords(line []styledWord) string {
	parts := make([]string, len(line))
	for i, item := range line {
		parts[i] = item.s
	}
	return strings.Join(parts, " ")
}
