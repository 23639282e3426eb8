package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agriqa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func newTestComposer(t *testing.T, gen *fakeGenerator) *AnswerComposer {
	return NewAnswerComposer(gen, newTestAggregator(nil), zaptest.NewLogger(t))
}

func rainfallOutcome(n int) models.FetchOutcome {
	records := make([]models.Record, n)
	for i := range records {
		records[i] = models.Record{"state": "Bihar", "annual_rainfall_mm": 1027.5}
	}
	return models.FetchOutcome{
		Dataset: models.DatasetDescriptor{
			ResourceID: "res-rain",
			Title:      "Rainfall Statistics",
			Ministry:   "India Meteorological Department",
		},
		Records:   records,
		Succeeded: true,
	}
}

func TestAnswerComposer_Sufficient(t *testing.T) {
	gen := &fakeGenerator{response: "Bihar received 1027.5 mm of rainfall."}
	composer := newTestComposer(t, gen)

	answer := composer.Compose(context.Background(),
		models.Query{Text: "rainfall in bihar", Language: models.LanguageEnglish},
		models.ModeSufficient,
		[]models.FetchOutcome{rainfallOutcome(7)})

	assert.Equal(t, models.ModeSufficient, answer.Mode)
	assert.Equal(t, gen.response, answer.Text, "sufficient answers carry no disclaimer")

	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "Rainfall Statistics", answer.Sources[0].Title)
	assert.Equal(t, 7, answer.Sources[0].Records)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Rainfall Statistics: 7 records available")
	assert.Contains(t, gen.prompts[0], "ONLY the supplied data")
	assert.Contains(t, gen.prompts[0], "annual_rainfall_mm")
	assert.Contains(t, gen.prompts[0], "Answer in English.")
}

func TestAnswerComposer_Insufficient(t *testing.T) {
	gen := &fakeGenerator{response: "Partial data suggests normal rainfall."}
	composer := newTestComposer(t, gen)

	answer := composer.Compose(context.Background(),
		models.Query{Text: "rainfall in bihar", Language: models.LanguageEnglish},
		models.ModeInsufficient,
		[]models.FetchOutcome{rainfallOutcome(3)})

	assert.Equal(t, models.ModeInsufficient, answer.Mode)
	assert.True(t, strings.HasPrefix(answer.Text, hybridDisclaimers[models.LanguageEnglish]))
	assert.Contains(t, answer.Text, gen.response)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Based on available live data")
	assert.Contains(t, gen.prompts[0], "From general knowledge")

	// Live source first, then at most three trusted.
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "Rainfall Statistics", answer.Sources[0].Title)
	assert.LessOrEqual(t, len(answer.Sources), 1+maxHybridTrustedSources)
	for i, s := range answer.Sources {
		if i > 0 {
			assert.NotContains(t, s.URL, liveSourceBaseURL)
		}
	}
}

func TestAnswerComposer_NoMatch(t *testing.T) {
	gen := &fakeGenerator{response: "Kharif crops are sown with the monsoon."}
	composer := newTestComposer(t, gen)

	answer := composer.Compose(context.Background(),
		models.Query{Text: "what are kharif crops", Language: models.LanguageEnglish},
		models.ModeNoMatch, nil)

	assert.Equal(t, models.ModeNoMatch, answer.Mode)
	assert.True(t, strings.HasPrefix(answer.Text, fallbackDisclaimers[models.LanguageEnglish]))
	assert.Contains(t, answer.Text, gen.response)

	require.NotEmpty(t, answer.Sources)
	for _, s := range answer.Sources {
		assert.NotContains(t, s.URL, liveSourceBaseURL, "no-match answers cite trusted sources only")
	}

	require.Len(t, gen.prompts, 1)
	assert.NotContains(t, gen.prompts[0], "Data available:")
}

func TestAnswerComposer_GenerationFailureKeepsSourcesAndDisclaimer(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	composer := newTestComposer(t, gen)

	answer := composer.Compose(context.Background(),
		models.Query{Text: "crop production trends", Language: models.LanguageEnglish},
		models.ModeNoMatch, nil)

	assert.True(t, strings.HasPrefix(answer.Text, fallbackDisclaimers[models.LanguageEnglish]))
	assert.Contains(t, answer.Text, generationErrors[models.LanguageEnglish])
	assert.NotEmpty(t, answer.Sources, "citations must not depend on generation success")
}

func TestAnswerComposer_HindiDisclaimerAndInstruction(t *testing.T) {
	gen := &fakeGenerator{response: "बिहार में सामान्य वर्षा हुई।"}
	composer := newTestComposer(t, gen)

	answer := composer.Compose(context.Background(),
		models.Query{Text: "बारिश कैसी रही", Language: models.LanguageHindi},
		models.ModeInsufficient,
		[]models.FetchOutcome{rainfallOutcome(2)})

	assert.True(t, strings.HasPrefix(answer.Text, hybridDisclaimers[models.LanguageHindi]))
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "हिंदी में उत्तर दें")
}
