package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// dayTemplate fixes the content mix of the 7-day calendar. Control flow
// stays deterministic; free-form generation is confined to the copy itself.
type dayTemplate struct {
	Theme       string
	ContentType string
	Channels    []string
	PostTime    string
}

var calendarTemplates = [models.CalendarDays]dayTemplate{
	{Theme: "Brand story", ContentType: "image_post", Channels: []string{"instagram", "facebook"}, PostTime: "09:00"},
	{Theme: "Product spotlight", ContentType: "image_post", Channels: []string{"instagram"}, PostTime: "12:00"},
	{Theme: "Social proof", ContentType: "image_post", Channels: []string{"facebook", "linkedin"}, PostTime: "17:00"},
	{Theme: "Behind the scenes", ContentType: "short_video", Channels: []string{"instagram", "tiktok"}, PostTime: "15:00"},
	{Theme: "Education", ContentType: "carousel", Channels: []string{"instagram", "linkedin"}, PostTime: "10:00"},
	{Theme: "Community", ContentType: "image_post", Channels: []string{"facebook"}, PostTime: "13:00"},
	{Theme: "Offer", ContentType: "short_video", Channels: []string{"instagram", "facebook"}, PostTime: "18:00"},
}

// StrategyStage turns research output into a fixed-length content calendar,
// biased by whatever learning records exist. An empty corpus is normal.
type StrategyStage struct {
	textgen capability.TextGenerator
}

func NewStrategyStage(textgen capability.TextGenerator) *StrategyStage {
	return &StrategyStage{textgen: textgen}
}

func (s *StrategyStage) Execute(ctx context.Context, sc *StageContext) (*models.StrategyResult, error) {
	research := sc.Research

	overview, err := s.textgen.GenerateText(ctx, s.overviewPrompt(research, sc.Learnings))
	if err != nil {
		return nil, fmt.Errorf("failed to generate strategy overview: %w", err)
	}

	result := &models.StrategyResult{
		Overview:         strings.TrimSpace(overview),
		Days:             make([]models.DayPlan, 0, models.CalendarDays),
		LearningsApplied: len(sc.Learnings),
	}

	for i, template := range calendarTemplates {
		day := i + 1
		result.Days = append(result.Days, models.DayPlan{
			Day:         day,
			Theme:       template.Theme,
			ContentType: template.ContentType,
			Messaging:   s.messagingFor(research, template, day),
			Channels:    template.Channels,
			PostTime:    template.PostTime,
		})
	}

	return result, nil
}

func (s *StrategyStage) overviewPrompt(research *models.ResearchResult, learnings []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a one-paragraph 7-day social media strategy for %s", research.Business.Name)
	if research.Business.Industry != "" {
		fmt.Fprintf(&b, " (%s)", research.Business.Industry)
	}
	b.WriteString(".")
	if len(research.Competitors) > 0 {
		names := make([]string, 0, len(research.Competitors))
		for _, competitor := range research.Competitors {
			names = append(names, competitor.Name)
		}
		fmt.Fprintf(&b, " Competitors: %s.", strings.Join(names, ", "))
	}
	if research.Reviews.Source != models.ProvenanceAbsent && len(research.Reviews.Highlights) > 0 {
		fmt.Fprintf(&b, " Customers praise: %s.", strings.Join(research.Reviews.Highlights, "; "))
	}
	for _, learning := range learnings {
		fmt.Fprintf(&b, " Past campaign learning: %s.", learning)
	}
	return b.String()
}

// messagingFor builds the day's core message from gathered context. Review
// highlights rotate across days so each one gets used at least once.
func (s *StrategyStage) messagingFor(research *models.ResearchResult, template dayTemplate, day int) string {
	base := fmt.Sprintf("%s: %s content for %s", template.Theme, template.ContentType, research.Business.Name)
	highlights := research.Reviews.Highlights
	if len(highlights) > 0 {
		return fmt.Sprintf("%s, highlighting %q", base, highlights[(day-1)%len(highlights)])
	}
	if research.Business.Description != "" {
		return fmt.Sprintf("%s: %s", base, research.Business.Description)
	}
	return base
}
