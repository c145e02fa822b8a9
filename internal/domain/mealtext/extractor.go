// Package mealtext extracts food mentions from free-form meal descriptions.
//
// Extraction is a pluggable capability: the shipped implementation is a
// table-driven substring matcher, deliberately coarse (no tokenization, no
// stemming). A real NLP backend can replace it behind the Extractor
// interface without touching callers.
package mealtext

import (
	"context"
	"fmt"
	"strings"
)

// minDiverseGroups is the food-group count below which the variety
// suggestion is issued.
const minDiverseGroups = 3

// Variety suggestions.
const (
	suggestionAddVariety    = "Try to add more variety - include vegetables, fruits, or protein sources."
	suggestionGoodDiversity = "Good dietary diversity! Keep it up."
)

// keywordEntry maps one food keyword to its food group. Order matters:
// detected items preserve table order.
type keywordEntry struct {
	keyword string
	group   string
}

// keywordTable is the fixed keyword-to-group mapping.
var keywordTable = []keywordEntry{
	{"rice", "cereals"},
	{"roti", "cereals"},
	{"chapati", "cereals"},
	{"dal", "pulses"},
	{"lentils", "pulses"},
	{"sabzi", "vegetables"},
	{"vegetables", "vegetables"},
	{"fruit", "fruits"},
	{"banana", "fruits"},
	{"apple", "fruits"},
	{"milk", "dairy"},
	{"curd", "dairy"},
	{"egg", "protein"},
	{"chicken", "protein"},
	{"fish", "protein"},
}

// Extraction is the result of matching one meal description.
type Extraction struct {
	// Items are the matched keywords in table order.
	Items []string
	// Groups are the distinct food groups in first-detection order.
	Groups []string
	// DiversityScore is the number of distinct groups.
	DiversityScore int
}

// Message summarizes the extraction for the chat response.
func (x Extraction) Message() string {
	return fmt.Sprintf("I detected %d food items covering %d food groups.", len(x.Items), x.DiversityScore)
}

// Suggestion derives the variety advisory from the diversity score.
func (x Extraction) Suggestion() string {
	if x.DiversityScore < minDiverseGroups {
		return suggestionAddVariety
	}
	return suggestionGoodDiversity
}

// Extractor turns free text into a structured extraction. Implementations
// must be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, text string) (Extraction, error)
}

// KeywordExtractor implements Extractor by case-insensitive substring
// containment against the fixed keyword table.
type KeywordExtractor struct{}

// NewKeywordExtractor creates the table-driven extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract matches the keyword table against text. Empty input yields an
// empty extraction; there are no failure modes.
func (e *KeywordExtractor) Extract(_ context.Context, text string) (Extraction, error) {
	lower := strings.ToLower(text)

	out := Extraction{
		Items:  []string{},
		Groups: []string{},
	}
	seenGroups := make(map[string]struct{}, len(keywordTable))
	for _, entry := range keywordTable {
		if !strings.Contains(lower, entry.keyword) {
			continue
		}
		out.Items = append(out.Items, entry.keyword)
		if _, ok := seenGroups[entry.group]; !ok {
			seenGroups[entry.group] = struct{}{}
			out.Groups = append(out.Groups, entry.group)
		}
	}
	out.DiversityScore = len(out.Groups)
	return out, nil
}
