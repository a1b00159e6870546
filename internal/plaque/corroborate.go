package plaque

import (
	"strings"
	"unicode"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"go-tree-inspector/pkg/models"
)

// MinSimilarity is the normalised edit similarity at which a plaque is taken
// to name the same species as the identification.
const MinSimilarity = 0.8

// Corroborate compares plaque text with the identified name. Plaques carry
// more than the name (common name, planting year), so the name is matched
// against every run of words of the same length and the best run wins.
func Corroborate(plaqueText, name string) models.PlaqueReading {
	reading := models.PlaqueReading{Text: plaqueText, WordErrorRate: 1}

	nameWords := normalize(name)
	textWords := normalize(plaqueText)
	if len(nameWords) == 0 || len(textWords) == 0 {
		return reading
	}

	want := strings.Join(nameWords, " ")
	var best []string
	bestSim := -1.0

	span := len(nameWords)
	if span > len(textWords) {
		span = len(textWords)
	}
	for i := 0; i+span <= len(textWords); i++ {
		window := textWords[i : i+span]
		sim := similarity(want, strings.Join(window, " "))
		if sim > bestSim {
			bestSim = sim
			best = window
		}
	}

	rate, _ := wer.WER(nameWords, best)
	reading.Similarity = bestSim
	reading.WordErrorRate = rate
	reading.Corroborates = bestSim >= MinSimilarity
	return reading
}

func similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.Distance(a, b))/float64(longest)
}

// normalize lowercases and keeps letter runs as words
func normalize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
