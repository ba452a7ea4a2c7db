// internal/prompt/format.go
package prompt

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"futureself/internal/models"
)

// FormatContext renders plan context answers as "Label: value" lines in input
// order. Blank answers are skipped; no answers yields "".
func FormatContext(answers []models.Answer) string {
	lines := make([]string, 0, len(answers))
	for _, a := range answers {
		value := strings.TrimSpace(a.Value)
		if value == "" {
			continue
		}
		lines = append(lines, Label(a.ID)+": "+value)
	}
	return strings.Join(lines, "\n")
}

// Label turns a field id like "current_fitness_level" into
// "Current Fitness Level".
func Label(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
