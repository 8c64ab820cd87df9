// Package sentiment labels article text as positive, negative or neutral.
package sentiment

import (
	"fmt"
	"slices"
	"strings"
)

// Sentiment is an article's mood label.
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Neutral  Sentiment = "Neutral"
)

// UnmarshalText accepts any label Parse accepts, so decoded reports and stats
// always carry canonical labels. Empty text decodes to the empty label.
func (s *Sentiment) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = ""
		return nil
	}
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Parse converts a label (case-insensitive) to a Sentiment.
func Parse(s string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return Positive, nil
	case "negative":
		return Negative, nil
	case "neutral":
		return Neutral, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", s)
	}
}

// Classifier assigns a Sentiment to text.
type Classifier interface {
	Classify(text string) Sentiment
}

// Default keyword lists.
var (
	DefaultPositive = []string{"win", "success", "growth", "rise"}
	DefaultNegative = []string{"loss", "fail", "crisis", "drop"}
)

// KeywordClassifier matches lowercased text against keyword lists by substring.
// Positive keywords are checked first, so text containing both is Positive.
// Substring matching means "rise" also matches "surprise".
type KeywordClassifier struct {
	positive []string
	negative []string
}

// NewKeywordClassifier lowercases the keyword lists. Nil lists use the defaults;
// empty strings are dropped since they would match everything.
func NewKeywordClassifier(positive, negative []string) *KeywordClassifier {
	if positive == nil {
		positive = DefaultPositive
	}
	if negative == nil {
		negative = DefaultNegative
	}
	return &KeywordClassifier{positive: normalize(positive), negative: normalize(negative)}
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Classify returns Positive, Negative or Neutral.
func (c *KeywordClassifier) Classify(text string) Sentiment {
	text = strings.ToLower(text)
	if containsAny(text, c.positive) {
		return Positive
	}
	if containsAny(text, c.negative) {
		return Negative
	}
	return Neutral
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Mode returns the most frequent label. Ties go to the label that sorts first;
// an empty slice yields Neutral.
func Mode(labels []Sentiment) Sentiment {
	if len(labels) == 0 {
		return Neutral
	}
	counts := Distribution(labels)
	keys := make([]Sentiment, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

// Distribution counts labels.
func Distribution(labels []Sentiment) map[Sentiment]int {
	counts := make(map[Sentiment]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
