package metrics

import (
	"context"
	"regexp"

	"trustgate/internal/types"
)

var (
	dataSourceRe    = regexp.MustCompile(`(?i)\b(collected from|sourced from|derived from|scraped|crawled|source[s]?:)\b`)
	preprocessingRe = regexp.MustCompile(`(?i)\b(preprocess|dedup|filter|clean|normaliz|tokeniz|quality control)\w*\b`)
	citationRe      = regexp.MustCompile(`(?i)\b(citation|bibtex|@article|@inproceedings|doi\.org)\b`)
)

const comprehensiveCardLength = 1500

// DatasetQuality scores the dataset card on structural completeness: a
// substantial card 0.4, a stated data source 0.2, preprocessing/quality
// control notes 0.2, citation or adoption signals 0.2.
type DatasetQuality struct{}

func (DatasetQuality) Kind() Kind { return KindDatasetQuality }

func (DatasetQuality) Evaluate(_ context.Context, m *types.Model) Result {
	if m.Dataset == nil {
		return undefined(KindDatasetQuality, "no dataset section populated")
	}

	card := m.Dataset.CardText
	if card == "" {
		return scored(KindDatasetQuality, 0, map[string]any{
			"reason": "dataset has no card text",
		})
	}

	comprehensive := len(card) >= comprehensiveCardLength
	hasSource := dataSourceRe.MatchString(card)
	hasPreprocessing := preprocessingRe.MatchString(card)
	adopted := citationRe.MatchString(card) || m.Dataset.Downloads > 1000

	score := 0.0
	if comprehensive {
		score += 0.4
	}
	if hasSource {
		score += 0.2
	}
	if hasPreprocessing {
		score += 0.2
	}
	if adopted {
		score += 0.2
	}

	return scored(KindDatasetQuality, score, map[string]any{
		"comprehensive_card":    comprehensive,
		"has_data_source":       hasSource,
		"has_preprocessing":     hasPreprocessing,
		"citation_or_downloads": adopted,
		"card_length":           len(card),
	})
}
