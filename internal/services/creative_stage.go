package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pulsecraft/marketing-engine-backend/internal/assets"
	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// CreativeStage generates the per-day assets for the calendar: a caption
// behind a quality gate, at least one image, and a video on the designated
// days. Failures are contained to the day that hit them; a day that
// exhausts its retries is marked degraded instead of failing the campaign.
type CreativeStage struct {
	textgen  capability.TextGenerator
	mediagen capability.MediaGenerator
	assets   assets.Store
	cfg      Config
}

func NewCreativeStage(textgen capability.TextGenerator, mediagen capability.MediaGenerator, assetStore assets.Store, cfg Config) *CreativeStage {
	return &CreativeStage{textgen: textgen, mediagen: mediagen, assets: assetStore, cfg: cfg}
}

// Execute produces assets for every day plan with bounded parallelism.
// onDayDone is called once per finished day with the running completion
// count; calls are serialized so reported progress stays monotonic. Results
// are merged by day index regardless of completion order.
func (s *CreativeStage) Execute(ctx context.Context, sc *StageContext, onDayDone func(completed int, day *models.DayAssets)) (*models.CreativeResult, error) {
	plans := sc.Strategy.Days
	results := make([]models.DayAssets, len(plans))

	workers := s.cfg.CreativeWorkers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				day := s.produceDay(ctx, sc, &plans[i])
				mu.Lock()
				results[i] = *day
				completed++
				if onDayDone != nil {
					onDayDone(completed, day)
				}
				mu.Unlock()
			}
		}()
	}

	for i := range plans {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("creative stage interrupted: %w", err)
	}

	return &models.CreativeResult{Days: results}, nil
}

// produceDay never returns an error: per-day failures degrade the day
func (s *CreativeStage) produceDay(ctx context.Context, sc *StageContext, plan *models.DayPlan) *models.DayAssets {
	campaign := sc.Campaign
	day := &models.DayAssets{Day: plan.Day}

	s.generateCaption(ctx, sc, plan, day)
	s.generateImage(ctx, campaign.ID, plan, day)
	if s.videoDay(plan.Day) {
		s.generateVideo(ctx, campaign.ID, plan, day)
	}

	return day
}

// generateCaption runs the quality gate: regenerate while the score is
// below threshold and attempts remain, always keeping the best-scoring
// attempt. The terminal attempt is accepted unconditionally.
func (s *CreativeStage) generateCaption(ctx context.Context, sc *StageContext, plan *models.DayPlan, day *models.DayAssets) {
	var best *capability.Caption
	attempts := 0

	for attempts < s.cfg.MaxCaptionAttempts {
		attempts++
		caption, err := s.textgen.GenerateCaption(ctx, s.captionPrompt(sc, plan, attempts))
		if err != nil {
			logrus.Warnf("Campaign %s day %d: caption attempt %d failed: %v", sc.Campaign.ID, plan.Day, attempts, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if best == nil || caption.Score > best.Score {
			best = caption
		}
		if best.Score >= s.cfg.QualityThreshold {
			break
		}
	}

	day.Attempts = attempts
	if best == nil {
		day.Degraded = true
		day.DegradedNote = appendNote(day.DegradedNote, "caption generation failed")
		return
	}
	day.Caption = best.Text
	day.CaptionScore = best.Score
	if best.Score < s.cfg.QualityThreshold {
		logrus.Infof("Campaign %s day %d: accepting best caption below threshold (score %d)",
			sc.Campaign.ID, plan.Day, best.Score)
	}
}

func (s *CreativeStage) generateImage(ctx context.Context, campaignID string, plan *models.DayPlan, day *models.DayAssets) {
	prompt := fmt.Sprintf("Social media image, %s, for: %s", plan.Theme, plan.Messaging)
	media, err := s.generateWithRetries(ctx, prompt, s.mediagen.GenerateImage)
	if err != nil {
		logrus.Warnf("Campaign %s day %d: image generation exhausted retries: %v", campaignID, plan.Day, err)
		day.Degraded = true
		day.DegradedNote = appendNote(day.DegradedNote, "image generation failed")
		return
	}

	key := fmt.Sprintf("campaigns/%s/day-%d-image%s", campaignID, plan.Day, extensionFor(media.ContentType))
	ref, err := s.assets.Put(ctx, key, media.Data, media.ContentType)
	if err != nil {
		logrus.Warnf("Campaign %s day %d: image upload failed: %v", campaignID, plan.Day, err)
		day.Degraded = true
		day.DegradedNote = appendNote(day.DegradedNote, "image upload failed")
		return
	}
	day.ImageRefs = append(day.ImageRefs, ref)
}

func (s *CreativeStage) generateVideo(ctx context.Context, campaignID string, plan *models.DayPlan, day *models.DayAssets) {
	prompt := fmt.Sprintf("Short social media video, %s, for: %s", plan.Theme, plan.Messaging)
	media, err := s.generateWithRetries(ctx, prompt, s.mediagen.GenerateVideo)
	if err != nil {
		logrus.Warnf("Campaign %s day %d: video generation exhausted retries: %v", campaignID, plan.Day, err)
		day.Degraded = true
		day.DegradedNote = appendNote(day.DegradedNote, "video generation failed")
		return
	}

	key := fmt.Sprintf("campaigns/%s/day-%d-video%s", campaignID, plan.Day, extensionFor(media.ContentType))
	ref, err := s.assets.Put(ctx, key, media.Data, media.ContentType)
	if err != nil {
		logrus.Warnf("Campaign %s day %d: video upload failed: %v", campaignID, plan.Day, err)
		day.Degraded = true
		day.DegradedNote = appendNote(day.DegradedNote, "video upload failed")
		return
	}
	day.VideoRef = ref
}

type mediaFunc func(ctx context.Context, prompt string, refs []string) (*capability.GeneratedMedia, error)

func (s *CreativeStage) generateWithRetries(ctx context.Context, prompt string, generate mediaFunc) (*capability.GeneratedMedia, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MediaRetries; attempt++ {
		media, err := generate(ctx, prompt, nil)
		if err == nil {
			return media, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (s *CreativeStage) videoDay(day int) bool {
	for _, d := range s.cfg.VideoDays {
		if d == day {
			return true
		}
	}
	return false
}

func (s *CreativeStage) captionPrompt(sc *StageContext, plan *models.DayPlan, attempt int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a social media caption for %s. Day %d theme: %s. Message: %s. Channels: %s.",
		sc.Research.Business.Name, plan.Day, plan.Theme, plan.Messaging, strings.Join(plan.Channels, ", "))
	if attempt > 1 {
		// adjust the approach on regeneration rather than retrying verbatim
		fmt.Fprintf(&b, " Previous attempt scored too low; try a different angle (attempt %d).", attempt)
	}
	return b.String()
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}
