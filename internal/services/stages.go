package services

import (
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// Stage names as reported in progress events and the current_stage field
const (
	StageResearch = "research"
	StageStrategy = "strategy"
	StageCreative = "creative"
)

// StageContext carries the campaign configuration and the results of
// already-completed stages into the next stage handler, together with the
// best-effort learning corpus.
type StageContext struct {
	Campaign  *models.Campaign
	Research  *models.ResearchResult
	Strategy  *models.StrategyResult
	Learnings []string
}

// provenanceFor maps a fallback-chain provider index to a provenance marker
func provenanceFor(providerIndex int) models.Provenance {
	if providerIndex == 0 {
		return models.ProvenancePrimary
	}
	return models.ProvenanceFallback
}
