package parse

import "strings"

// categoryMapping translates the site's Spanish category labels into the
// canonical English set. Only exact (trimmed) matches translate; anything
// else is left unmapped rather than guessed.
var categoryMapping = map[string]string{
	"Música":       "Music",
	"Conciertos":   "Concerts",
	"Teatro":       "Theater",
	"Deportes":     "Sports",
	"Familia":      "Family",
	"Especiales":   "Special Events",
	"Festivales":   "Festivals",
	"Humor":        "Comedy",
	"Danza":        "Dance",
	"Exposiciones": "Exhibitions",
	"Cine":         "Cinema",
	"Infantil":     "Kids",
}

// MapCategory returns the English category for a Spanish label, or "" when
// the label is unknown.
func MapCategory(text string) string {
	return categoryMapping[strings.TrimSpace(text)]
}
