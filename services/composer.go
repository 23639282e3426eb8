package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"agriqa/metrics"
	"agriqa/models"

	"go.uber.org/zap"
)

const (
	maxSampleRecords        = 10
	maxSampleFields         = 5
	maxHybridTrustedSources = 3
)

// Fixed bilingual prefixes marking an answer's provenance, so callers can
// tell a hybrid or fallback answer apart without parsing the body.
var (
	hybridDisclaimers = map[models.Language]string{
		models.LanguageEnglish: "ℹ️ Hybrid Response: This answer combines the limited live data available from data.gov.in with general agricultural knowledge.",
		models.LanguageHindi:   "ℹ️ हाइब्रिड प्रतिक्रिया: यह उत्तर data.gov.in से उपलब्ध सीमित लाइव डेटा और सामान्य कृषि ज्ञान को मिलाकर तैयार किया गया है।",
	}
	fallbackDisclaimers = map[models.Language]string{
		models.LanguageEnglish: "⚠️ Note: Live data from data.gov.in is currently unavailable. This answer is based on general agricultural knowledge.",
		models.LanguageHindi:   "⚠️ नोट: data.gov.in से लाइव डेटा वर्तमान में उपलब्ध नहीं है। यह उत्तर सामान्य कृषि ज्ञान पर आधारित है।",
	}
	generationErrors = map[models.Language]string{
		models.LanguageEnglish: "I'm sorry, something went wrong while generating the answer. Please try again later.",
		models.LanguageHindi:   "उत्तर तैयार करते समय त्रुटि हुई। कृपया बाद में पुनः प्रयास करें।",
	}
)

// AnswerComposer assembles the final answer for a chosen response mode,
// delegating prose to the TextGenerator. Citations never depend on whether
// generation succeeds.
type AnswerComposer struct {
	generator TextGenerator
	sources   *SourceAggregator
	logger    *zap.Logger
}

func NewAnswerComposer(generator TextGenerator, sources *SourceAggregator, log *zap.Logger) *AnswerComposer {
	return &AnswerComposer{generator: generator, sources: sources, logger: log}
}

// Compose produces the answer for one query. It never returns an error: a
// failed generation degrades to a localized generic message with the mode's
// disclaimer and sources intact.
func (c *AnswerComposer) Compose(ctx context.Context, query models.Query, mode models.ResponseMode, outcomes []models.FetchOutcome) models.Answer {
	switch mode {
	case models.ModeSufficient:
		return c.composeSufficient(ctx, query, outcomes)
	case models.ModeInsufficient:
		return c.composeInsufficient(ctx, query, outcomes)
	default:
		return c.composeFallback(ctx, query)
	}
}

func (c *AnswerComposer) composeSufficient(ctx context.Context, query models.Query, outcomes []models.FetchOutcome) models.Answer {
	prompt := fmt.Sprintf(`Question: %s

%s

Answer the question using ONLY the supplied data. Cite specific numbers. %s`,
		query.Text, buildDataContext(outcomes), languageInstruction(query.Language))

	text := c.generate(ctx, query.Language, prompt)
	return models.Answer{
		Text:    text,
		Sources: LiveSources(outcomes),
		Mode:    models.ModeSufficient,
	}
}

func (c *AnswerComposer) composeInsufficient(ctx context.Context, query models.Query, outcomes []models.FetchOutcome) models.Answer {
	prompt := fmt.Sprintf(`Question: %s

%s

Only limited live data is available. Structure your answer in two clearly
separated sections: first "Based on available live data" using only the
supplied records, then "From general knowledge" filling the gaps. %s`,
		query.Text, buildDataContext(outcomes), languageInstruction(query.Language))

	text := hybridDisclaimers[query.Language] + "\n\n" + c.generate(ctx, query.Language, prompt)
	live := LiveSources(outcomes)
	trusted := c.sources.TrustedSources(query)
	return models.Answer{
		Text:    text,
		Sources: MergeSources(live, trusted, maxHybridTrustedSources),
		Mode:    models.ModeInsufficient,
	}
}

func (c *AnswerComposer) composeFallback(ctx context.Context, query models.Query) models.Answer {
	prompt := fmt.Sprintf(`Question: %s

No live data is available for this question. Answer comprehensively from your
general knowledge of Indian agriculture and climate, with practical examples
where relevant. %s`,
		query.Text, languageInstruction(query.Language))

	// Trusted sources are gathered before generation so a generator failure
	// cannot cost the caller its citations.
	trusted := c.sources.TrustedSources(query)
	text := fallbackDisclaimers[query.Language] + "\n\n" + c.generate(ctx, query.Language, prompt)
	return models.Answer{
		Text:    text,
		Sources: trusted,
		Mode:    models.ModeNoMatch,
	}
}

// generate calls the text generator and absorbs any failure into a localized
// generic message.
func (c *AnswerComposer) generate(ctx context.Context, lang models.Language, prompt string) string {
	text, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.GenerationFailures.Inc()
		c.logger.Error("text generation failed", zap.Error(err))
		return generationErrors[lang]
	}
	return text
}

func languageInstruction(lang models.Language) string {
	if lang == models.LanguageHindi {
		return "Answer in Hindi (हिंदी में उत्तर दें)."
	}
	return "Answer in English."
}

// buildDataContext summarizes the fetched datasets for the prompt: per
// dataset the title, record count and leading field names, then up to ten
// sample records across all datasets.
func buildDataContext(outcomes []models.FetchOutcome) string {
	var b strings.Builder
	b.WriteString("Data available:\n")

	idx := 1
	for _, o := range outcomes {
		if len(o.Records) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%d. %s: %d records available. Sample fields: %s\n",
			idx, o.Dataset.Title, len(o.Records), strings.Join(fieldNames(o.Records[0], maxSampleFields), ", "))
		idx++
	}

	samples := sampleRecords(outcomes, maxSampleRecords)
	if len(samples) > 0 {
		b.WriteString("\nSample records:\n")
		for _, r := range samples {
			if line, err := json.Marshal(r); err == nil {
				b.Write(line)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// fieldNames returns up to n field names sorted for deterministic prompts.
func fieldNames(record models.Record, n int) []string {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func sampleRecords(outcomes []models.FetchOutcome, n int) []models.Record {
	var samples []models.Record
	for _, o := range outcomes {
		for _, r := range o.Records {
			if len(samples) >= n {
				return samples
			}
			samples = append(samples, r)
		}
	}
	return samples
}
