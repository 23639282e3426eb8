package services

import "agriqa/models"

// sufficientRecordThreshold is the minimum aggregate record count for an
// answer built from live data alone. Below it the answer blends in general
// knowledge; at zero the answer is general knowledge only.
const sufficientRecordThreshold = 5

// TotalRecords sums the records across all fetch outcomes for one query.
func TotalRecords(outcomes []models.FetchOutcome) int {
	total := 0
	for _, o := range outcomes {
		total += len(o.Records)
	}
	return total
}

// SelectResponseMode decides the response mode from the aggregate record
// count. Pure function: partial or failed fetches only matter through the
// records they did or did not produce.
func SelectResponseMode(outcomes []models.FetchOutcome) models.ResponseMode {
	switch n := TotalRecords(outcomes); {
	case n == 0:
		return models.ModeNoMatch
	case n < sufficientRecordThreshold:
		return models.ModeInsufficient
	default:
		return models.ModeSufficient
	}
}
