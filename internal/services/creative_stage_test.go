package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/marketing-engine-backend/internal/assets"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

func testStageContext() *StageContext {
	days := make([]models.DayPlan, 0, models.CalendarDays)
	for i := 0; i < models.CalendarDays; i++ {
		days = append(days, models.DayPlan{
			Day:         i + 1,
			Theme:       "Brand story",
			ContentType: "image_post",
			Messaging:   "content for Example Coffee",
			Channels:    []string{"instagram"},
			PostTime:    "09:00",
		})
	}
	return &StageContext{
		Campaign: &models.Campaign{ID: "test-campaign", BusinessURL: "https://example-coffee.test"},
		Research: &models.ResearchResult{
			Business: models.BusinessContext{Name: "Example Coffee", Source: models.ProvenancePrimary},
		},
		Strategy: &models.StrategyResult{Days: days},
	}
}

func TestCreativeStageProducesAllDaysInOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CreativeWorkers = 3
	stage := NewCreativeStage(&stubTextGen{}, &stubMediaGen{}, assets.NewMemoryStore(), cfg)

	result, err := stage.Execute(context.Background(), testStageContext(), nil)
	require.NoError(t, err)
	require.Len(t, result.Days, models.CalendarDays)

	// merged by day index regardless of worker completion order
	for i, day := range result.Days {
		assert.Equal(t, i+1, day.Day)
		assert.NotEmpty(t, day.Caption)
		assert.Len(t, day.ImageRefs, 1)
		assert.False(t, day.Degraded)
	}
}

func TestCreativeStageVideoDayPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VideoDays = []int{1, 4, 7}
	stage := NewCreativeStage(&stubTextGen{}, &stubMediaGen{}, assets.NewMemoryStore(), cfg)

	result, err := stage.Execute(context.Background(), testStageContext(), nil)
	require.NoError(t, err)

	for _, day := range result.Days {
		switch day.Day {
		case 1, 4, 7:
			assert.NotEmpty(t, day.VideoRef, "day %d should carry a video", day.Day)
		default:
			assert.Empty(t, day.VideoRef, "day %d should not carry a video", day.Day)
		}
	}
}

func TestCreativeStageProgressCallbackIsMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CreativeWorkers = 3
	stage := NewCreativeStage(&stubTextGen{}, &stubMediaGen{}, assets.NewMemoryStore(), cfg)

	var counts []int
	_, err := stage.Execute(context.Background(), testStageContext(), func(completed int, day *models.DayAssets) {
		counts = append(counts, completed)
	})
	require.NoError(t, err)
	require.Len(t, counts, models.CalendarDays)
	for i, count := range counts {
		assert.Equal(t, i+1, count)
	}
}

func TestCaptionQualityGateStopsAtThreshold(t *testing.T) {
	textgen := &stubTextGen{scores: []int{80}}
	cfg := DefaultConfig()
	stage := NewCreativeStage(textgen, &stubMediaGen{}, assets.NewMemoryStore(), cfg)

	day := &models.DayAssets{Day: 1}
	sc := testStageContext()
	stage.generateCaption(context.Background(), sc, &sc.Strategy.Days[0], day)

	assert.Equal(t, 1, day.Attempts)
	assert.Equal(t, 80, day.CaptionScore)
}

func TestCaptionQualityGateKeepsBestBelowThreshold(t *testing.T) {
	// all attempts score below the gate; the best one is kept
	textgen := &stubTextGen{scores: []int{50, 62, 57}}
	cfg := DefaultConfig()
	stage := NewCreativeStage(textgen, &stubMediaGen{}, assets.NewMemoryStore(), cfg)

	day := &models.DayAssets{Day: 1}
	sc := testStageContext()
	stage.generateCaption(context.Background(), sc, &sc.Strategy.Days[0], day)

	assert.Equal(t, cfg.MaxCaptionAttempts, day.Attempts)
	assert.Equal(t, 62, day.CaptionScore)
	assert.NotEmpty(t, day.Caption)
	assert.False(t, day.Degraded)
}

func TestCaptionFailureDegradesDay(t *testing.T) {
	textgen := &stubTextGen{captionErr: errors.New("model overloaded")}
	cfg := DefaultConfig()
	stage := NewCreativeStage(textgen, &stubMediaGen{}, assets.NewMemoryStore(), cfg)

	day := &models.DayAssets{Day: 1}
	sc := testStageContext()
	stage.generateCaption(context.Background(), sc, &sc.Strategy.Days[0], day)

	assert.True(t, day.Degraded)
	assert.Contains(t, day.DegradedNote, "caption generation failed")
	assert.Empty(t, day.Caption)
	assert.Equal(t, cfg.MaxCaptionAttempts, day.Attempts)
}

func TestImageFailureDegradesOnlyThatDay(t *testing.T) {
	mediagen := &stubMediaGen{imageErr: errors.New("render farm down")}
	cfg := DefaultConfig()
	cfg.VideoDays = nil
	stage := NewCreativeStage(&stubTextGen{}, mediagen, assets.NewMemoryStore(), cfg)

	result, err := stage.Execute(context.Background(), testStageContext(), nil)
	require.NoError(t, err)

	// campaign-level success with per-day degradation markers
	for _, day := range result.Days {
		assert.True(t, day.Degraded)
		assert.Contains(t, day.DegradedNote, "image generation failed")
		assert.NotEmpty(t, day.Caption, "captions are independent of media failures")
	}
}

func TestCreativeStageUploadsToAssetStore(t *testing.T) {
	assetStore := assets.NewMemoryStore()
	cfg := DefaultConfig()
	stage := NewCreativeStage(&stubTextGen{}, &stubMediaGen{}, assetStore, cfg)

	_, err := stage.Execute(context.Background(), testStageContext(), nil)
	require.NoError(t, err)

	// 7 images plus videos on the designated days
	assert.Equal(t, models.CalendarDays+len(cfg.VideoDays), assetStore.Len())
	data, ok := assetStore.Get("campaigns/test-campaign/day-1-image.png")
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), data)
}
