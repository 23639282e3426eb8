package models

// Language selects the answer language for a query.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Query is the immutable input to the resolution pipeline.
type Query struct {
	Text     string
	Language Language
}

// ResponseMode describes how much live data backs an answer.
type ResponseMode string

const (
	// ModeNoMatch means no dataset matched or every fetch came back empty;
	// the answer is general knowledge only.
	ModeNoMatch ResponseMode = "no_match"
	// ModeInsufficient means some live data arrived but not enough to
	// answer from it alone; the answer blends live data with general knowledge.
	ModeInsufficient ResponseMode = "insufficient"
	// ModeSufficient means the answer is built from live data only.
	ModeSufficient ResponseMode = "sufficient"
)
