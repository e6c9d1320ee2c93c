package services

import (
	"fmt"
	"os"
	"time"
)

// Config tunes the orchestration pipeline. Values come from the
// environment with defaults matching the documented design targets.
type Config struct {
	// Per-stage wall-clock timeouts. A stage that exceeds its timeout is a
	// hard failure and the campaign moves to failed.
	ResearchTimeout time.Duration
	StrategyTimeout time.Duration
	CreativeTimeout time.Duration

	// Quality gate for generated captions
	QualityThreshold   int // accept scores at or above this, 0-100
	MaxCaptionAttempts int // regeneration budget per caption

	// Media generation retries per unit of work (one calendar day)
	MediaRetries int

	// Bounded parallelism for per-day asset generation
	CreativeWorkers int

	// Calendar days that get a video asset in addition to images
	VideoDays []int

	// How many recent learning records to feed the strategy stage
	LearningLimit int
}

// DefaultConfig returns the documented defaults
func DefaultConfig() Config {
	return Config{
		ResearchTimeout:    5 * time.Minute,
		StrategyTimeout:    5 * time.Minute,
		CreativeTimeout:    15 * time.Minute,
		QualityThreshold:   75,
		MaxCaptionAttempts: 3,
		MediaRetries:       2,
		CreativeWorkers:    3,
		VideoDays:          []int{1, 4, 7},
		LearningLimit:      20,
	}
}

// ConfigFromEnv returns the defaults overridden by environment variables
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ResearchTimeout = getEnvAsDuration("RESEARCH_TIMEOUT", cfg.ResearchTimeout)
	cfg.StrategyTimeout = getEnvAsDuration("STRATEGY_TIMEOUT", cfg.StrategyTimeout)
	cfg.CreativeTimeout = getEnvAsDuration("CREATIVE_TIMEOUT", cfg.CreativeTimeout)
	cfg.QualityThreshold = getEnvAsInt("QUALITY_THRESHOLD", cfg.QualityThreshold)
	cfg.MaxCaptionAttempts = getEnvAsInt("MAX_CAPTION_ATTEMPTS", cfg.MaxCaptionAttempts)
	cfg.MediaRetries = getEnvAsInt("MEDIA_RETRIES", cfg.MediaRetries)
	cfg.CreativeWorkers = getEnvAsInt("CREATIVE_WORKERS", cfg.CreativeWorkers)
	cfg.LearningLimit = getEnvAsInt("LEARNING_LIMIT", cfg.LearningLimit)
	return cfg
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, fmt.Sprintf("%d", defaultValue))
	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
