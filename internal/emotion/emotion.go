// Package emotion classifies submitted text into one of the fixed emotion
// tags used to color stars. Classification is a coarse polarity score over
// a small valence lexicon bucketed into emotions.
package emotion

import (
	"strings"
	"unicode"
)

// Valid emotion tags, from most negative to most positive polarity.
const (
	Grief     = "grief"
	Regret    = "regret"
	Hope      = "hope"
	Gratitude = "gratitude"
	Love      = "love"
)

// Valid reports whether e is a known emotion tag.
func Valid(e string) bool {
	switch e {
	case Grief, Regret, Hope, Gratitude, Love:
		return true
	}
	return false
}

// valence maps words to polarity in [-1, 1].
var valence = map[string]float64{
	"love": 0.9, "loved": 0.9, "adore": 0.9, "beautiful": 0.8,
	"wonderful": 0.8, "happy": 0.8, "joy": 0.8, "cherish": 0.7,
	"thank": 0.6, "thankful": 0.7, "grateful": 0.7, "gratitude": 0.7,
	"appreciate": 0.6, "glad": 0.5, "warm": 0.4, "smile": 0.4,
	"hope": 0.3, "wish": 0.2, "maybe": 0.1, "someday": 0.1,
	"dream": 0.2, "forgive": 0.3, "peace": 0.4,
	"miss": -0.3, "missed": -0.3, "sorry": -0.4, "regret": -0.5,
	"wrong": -0.4, "mistake": -0.4, "should": -0.2, "never": -0.3,
	"alone": -0.5, "lost": -0.6, "gone": -0.6, "hurt": -0.6,
	"pain": -0.7, "cry": -0.6, "tears": -0.6, "broken": -0.7,
	"grief": -0.9, "died": -0.9, "death": -0.9, "dead": -0.9,
	"goodbye": -0.7, "hate": -0.8, "angry": -0.6,
}

// Detect returns the emotion tag and polarity score for text.
// Thresholds: < -0.6 grief, < -0.2 regret, < 0.2 hope, < 0.5 gratitude,
// otherwise love. Empty or unrecognized text scores 0 (hope).
func Detect(text string) (string, float64) {
	score := polarity(text)

	switch {
	case score < -0.6:
		return Grief, score
	case score < -0.2:
		return Regret, score
	case score < 0.2:
		return Hope, score
	case score < 0.5:
		return Gratitude, score
	default:
		return Love, score
	}
}

func polarity(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var sum float64
	var hits int
	for _, w := range words {
		if v, ok := valence[w]; ok {
			sum += v
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / float64(hits)
}
