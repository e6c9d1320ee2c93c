package models

// Provenance indicates which source produced an externally-sourced datum.
// Multiple fallback paths may populate the same logical field, so every
// such field carries one of these markers.
type Provenance string

const (
	ProvenancePrimary    Provenance = "primary"    // preferred data source
	ProvenanceFallback   Provenance = "fallback"   // produced after the primary failed
	ProvenanceSupplied   Provenance = "supplied"   // provided by the caller at submission
	ProvenanceDiscovered Provenance = "discovered" // found autonomously during research
	ProvenanceAbsent     Provenance = "absent"     // all sources exhausted, datum missing
)

// BusinessContext is the resolved identity of the target business.
// Resolution is the only required datum of the research stage.
type BusinessContext struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Industry    string     `json:"industry,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      Provenance `json:"source"`
}

// Competitor is one competing business considered during strategy
type Competitor struct {
	Name   string     `json:"name"`
	URL    string     `json:"url"`
	Source Provenance `json:"source"`
}

// ReviewSummary aggregates customer sentiment data. Optional: when every
// source fails the summary is kept with Source=absent.
type ReviewSummary struct {
	Highlights []string   `json:"highlights,omitempty"`
	Sentiment  string     `json:"sentiment,omitempty"`
	Source     Provenance `json:"source"`
}

// ResearchResult is the output of the research stage
type ResearchResult struct {
	Business     BusinessContext `json:"business"`
	Competitors  []Competitor    `json:"competitors"`
	Reviews      ReviewSummary   `json:"reviews"`
	Trends       []string        `json:"trends,omitempty"`
	TrendsSource Provenance      `json:"trends_source"`
}

// DataPoints counts the optional context data the stage managed to gather.
// Used by the competitor sufficiency predicate.
func (r *ResearchResult) DataPoints() int {
	n := 0
	if r.Business.Industry != "" {
		n++
	}
	if r.Business.Description != "" {
		n++
	}
	if r.Reviews.Source != ProvenanceAbsent {
		n++
	}
	n += len(r.Trends)
	return n
}

// DayPlan describes the intended content for one calendar day
type DayPlan struct {
	Day         int      `json:"day"` // 1-based
	Theme       string   `json:"theme"`
	ContentType string   `json:"content_type"`
	Messaging   string   `json:"messaging"`
	Channels    []string `json:"channels"`
	PostTime    string   `json:"post_time"` // recommended local posting time, HH:MM
}

// StrategyResult is the output of the strategy stage: a fixed 7-day calendar
type StrategyResult struct {
	Overview         string    `json:"overview"`
	Days             []DayPlan `json:"days"`
	LearningsApplied int       `json:"learnings_applied"`
}

// CalendarDays is the fixed length of every generated content calendar
const CalendarDays = 7

// DayAssets holds the generated creative units for one calendar day
type DayAssets struct {
	Day          int      `json:"day"`
	Caption      string   `json:"caption"`
	CaptionScore int      `json:"caption_score"` // 0-100, self-assessed by the generator
	Attempts     int      `json:"attempts"`      // caption attempts made before acceptance
	ImageRefs    []string `json:"image_refs,omitempty"`
	VideoRef     string   `json:"video_ref,omitempty"`
	Degraded     bool     `json:"degraded"`
	DegradedNote string   `json:"degraded_note,omitempty"`
}

// CreativeResult is the output of the creative stage
type CreativeResult struct {
	Days []DayAssets `json:"days"`
}
