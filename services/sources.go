package services

import (
	"strings"

	"agriqa/config"
	"agriqa/models"
)

const (
	maxTrustedSources = 5
	liveSourceBaseURL = "https://data.gov.in/resource/"
)

// TopicRule maps query vocabulary to one bucket of the trusted catalog.
type TopicRule struct {
	Bucket string
	Terms  []string
}

// DefaultTopicRules classifies queries into the catalog's topic buckets in
// English and Hindi. The "general" bucket needs no rule: it is always
// included.
func DefaultTopicRules() []TopicRule {
	return []TopicRule{
		{Bucket: "price", Terms: []string{"price", "market", "mandi", "rate", "cost", "कीमत", "मंडी", "भाव", "दाम"}},
		{Bucket: "crop", Terms: []string{"crop", "production", "yield", "harvest", "farming", "agriculture", "फसल", "उपज", "खेती", "कृषि"}},
		{Bucket: "climate", Terms: []string{"climate", "weather", "rain", "rainfall", "temperature", "monsoon", "जलवायु", "मौसम", "बारिश", "वर्षा", "तापमान"}},
	}
}

// SourceAggregator builds citation lists: live sources from fetched datasets
// and trusted sources from the static reference catalog.
type SourceAggregator struct {
	registry *config.RegistryStore
	topics   []TopicRule
}

func NewSourceAggregator(registry *config.RegistryStore, topics []TopicRule) *SourceAggregator {
	return &SourceAggregator{registry: registry, topics: topics}
}

// TrustedSources returns up to five curated references matching the query's
// topics, always including the general bucket, deduplicated by URL in
// first-seen order.
func (a *SourceAggregator) TrustedSources(query models.Query) []models.Source {
	catalog := a.registry.Snapshot().TrustedSources
	text := strings.ToLower(query.Text)

	var out []models.Source
	seen := make(map[string]bool)
	add := func(sources []models.Source) {
		for _, s := range sources {
			if seen[s.URL] {
				continue
			}
			seen[s.URL] = true
			out = append(out, s)
		}
	}

	for _, rule := range a.topics {
		for _, term := range rule.Terms {
			if strings.Contains(text, term) {
				add(catalog[rule.Bucket])
				break
			}
		}
	}
	add(catalog["general"])

	if len(out) > maxTrustedSources {
		out = out[:maxTrustedSources]
	}
	return out
}

// LiveSources derives citations from the datasets that actually returned
// records.
func LiveSources(outcomes []models.FetchOutcome) []models.Source {
	var out []models.Source
	for _, o := range outcomes {
		if len(o.Records) == 0 {
			continue
		}
		out = append(out, models.Source{
			Title:    o.Dataset.Title,
			URL:      liveSourceBaseURL + o.Dataset.ResourceID,
			Ministry: o.Dataset.Ministry,
			Records:  len(o.Records),
		})
	}
	return out
}

// MergeSources concatenates live sources followed by at most maxTrusted
// trusted sources, deduplicating by URL. Live sources always come first.
func MergeSources(live, trusted []models.Source, maxTrusted int) []models.Source {
	out := make([]models.Source, 0, len(live)+maxTrusted)
	seen := make(map[string]bool)
	for _, s := range live {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	added := 0
	for _, s := range trusted {
		if added >= maxTrusted {
			break
		}
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
		added++
	}
	return out
}
