package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"agriqa/models"
)

const maxMatchedDatasets = 3

// Keyword ties a query trigger word to the dataset vocabulary it implies.
// A keyword only scores when one of its related terms appears in the
// descriptor's title or description.
type Keyword struct {
	Term     string
	Language models.Language
	Related  []string
}

// DefaultKeywords covers the agriculture and climate vocabulary in English
// and Hindi.
func DefaultKeywords() []Keyword {
	return []Keyword{
		{Term: "crop", Language: models.LanguageEnglish, Related: []string{"production", "yield"}},
		{Term: "rain", Language: models.LanguageEnglish, Related: []string{"rainfall", "precipitation"}},
		{Term: "agriculture", Language: models.LanguageEnglish, Related: []string{"production", "yield", "farming"}},
		{Term: "climate", Language: models.LanguageEnglish, Related: []string{"rainfall", "temperature"}},
		{Term: "price", Language: models.LanguageEnglish, Related: []string{"price", "market", "mandi", "commodities"}},
		{Term: "mandi", Language: models.LanguageEnglish, Related: []string{"price", "market", "mandi"}},
		{Term: "weather", Language: models.LanguageEnglish, Related: []string{"rainfall", "temperature"}},
		{Term: "फसल", Language: models.LanguageHindi, Related: []string{"production", "yield"}},
		{Term: "बारिश", Language: models.LanguageHindi, Related: []string{"rainfall"}},
		{Term: "कृषि", Language: models.LanguageHindi, Related: []string{"production", "yield"}},
		{Term: "मंडी", Language: models.LanguageHindi, Related: []string{"price", "market", "mandi"}},
		{Term: "मौसम", Language: models.LanguageHindi, Related: []string{"rainfall", "temperature"}},
	}
}

// DefaultGateTerms lists words that mark a query as recognizably outside the
// agricultural domain. A gated query skips the upstream fetch entirely.
func DefaultGateTerms() []string {
	return []string{
		"quantum", "physics", "chemistry", "cricket", "football", "bollywood",
		"movie", "music", "politics", "election", "programming", "software",
		"computer", "smartphone", "stock market", "cryptocurrency",
		"क्वांटम", "क्रिकेट", "फिल्म", "संगीत", "राजनीति", "चुनाव", "कंप्यूटर",
	}
}

// DatasetMatcher scores dataset descriptors against a free-text query. It is
// a pure function of its keyword tables: no I/O, deterministic output.
type DatasetMatcher struct {
	keywords  []Keyword
	gateTerms []string
}

func NewDatasetMatcher(keywords []Keyword, gateTerms []string) *DatasetMatcher {
	return &DatasetMatcher{keywords: keywords, gateTerms: gateTerms}
}

// Match returns up to three descriptors ordered by descending relevance.
//
// When nothing scores above zero the outcome depends on the query: a query
// containing a non-agricultural gate term returns nil so the caller routes
// straight to the knowledge fallback, while a plausibly in-domain query
// returns the full registry and lets the fetch decide. (An earlier revision
// always fell back to the full registry; the gate avoids burning a network
// round trip on questions that cannot have agricultural data.)
func (m *DatasetMatcher) Match(query models.Query, registry []models.DatasetDescriptor) []models.DatasetDescriptor {
	text := strings.ToLower(query.Text)
	words := strings.Fields(text)

	type scored struct {
		descriptor models.DatasetDescriptor
		score      int
	}
	var matched []scored

	for _, d := range registry {
		haystack := strings.ToLower(d.Title + " " + d.Description)
		score := 0

		for _, kw := range m.keywords {
			if !strings.Contains(text, kw.Term) {
				continue
			}
			for _, related := range kw.Related {
				if strings.Contains(haystack, related) {
					score += 2
					break
				}
			}
		}

		for _, word := range words {
			if utf8.RuneCountInString(word) > 3 && strings.Contains(haystack, word) {
				score++
			}
		}

		if score > 0 {
			matched = append(matched, scored{descriptor: d, score: score})
		}
	}

	if len(matched) == 0 {
		for _, term := range m.gateTerms {
			if strings.Contains(text, term) {
				return nil
			}
		}
		out := make([]models.DatasetDescriptor, len(registry))
		copy(out, registry)
		return out
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].score > matched[j].score
	})

	if len(matched) > maxMatchedDatasets {
		matched = matched[:maxMatchedDatasets]
	}
	out := make([]models.DatasetDescriptor, len(matched))
	for i, s := range matched {
		out[i] = s.descriptor
	}
	return out
}
