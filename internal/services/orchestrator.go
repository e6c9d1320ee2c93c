package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/pulsecraft/marketing-engine-backend/internal/assets"
	"github.com/pulsecraft/marketing-engine-backend/internal/capability"
	"github.com/pulsecraft/marketing-engine-backend/internal/models"
	"github.com/pulsecraft/marketing-engine-backend/internal/store"
)

// ErrInvalidLocator is returned by Submit for malformed business locators.
// No campaign record is created in that case.
var ErrInvalidLocator = errors.New("invalid business locator")

// Progress percentage checkpoints. Within the creative stage the range
// between pctStrategyDone and pctCreativeDone is split evenly across the
// calendar days so polling clients see movement during the longest stage.
const (
	pctResearchStart = 5
	pctResearchDone  = 25
	pctStrategyDone  = 45
	pctCreativeDone  = 95
	pctCompleted     = 100
)

// Orchestrator drives campaigns from submission to a terminal state:
// sequencing the three stage handlers, persisting after each stage and
// reporting progress. All campaign mutations go through here.
type Orchestrator struct {
	store       store.Gateway
	runner      Runner
	hub         *ProgressHub
	researcher  *ResearchStage
	strategist  *StrategyStage
	producer    *CreativeStage
	learningSvc *LearningService
	dispatch    func(campaignID string) error
	cfg         Config
}

func NewOrchestrator(
	gateway store.Gateway,
	runner Runner,
	hub *ProgressHub,
	chain *capability.Chain,
	textgen capability.TextGenerator,
	mediagen capability.MediaGenerator,
	assetStore assets.Store,
	cfg Config,
) *Orchestrator {
	o := &Orchestrator{
		store:       gateway,
		runner:      runner,
		hub:         hub,
		researcher:  NewResearchStage(chain, textgen),
		strategist:  NewStrategyStage(textgen),
		producer:    NewCreativeStage(textgen, mediagen, assetStore, cfg),
		learningSvc: NewLearningService(gateway),
		cfg:         cfg,
	}
	o.dispatch = o.dispatchLocal
	return o
}

// UseQueue switches submission dispatch from the in-process runner to the
// work queue; a queue worker then claims campaigns and calls StartQueued.
func (o *Orchestrator) UseQueue(queue *QueueService) {
	o.dispatch = queue.PublishCampaign
}

func (o *Orchestrator) dispatchLocal(campaignID string) error {
	if !o.runner.Run(campaignID, func(ctx context.Context) {
		o.Execute(ctx, campaignID)
	}) {
		return fmt.Errorf("campaign %s is already executing", campaignID)
	}
	return nil
}

// StartQueued begins execution of a queued campaign, preserving the
// single-flight guarantee. Returns false if the campaign is already active.
func (o *Orchestrator) StartQueued(campaignID string) bool {
	return o.runner.Run(campaignID, func(ctx context.Context) {
		o.Execute(ctx, campaignID)
	})
}

// Submit validates the request, persists a pending campaign and schedules
// its asynchronous execution. It returns without waiting for the pipeline.
func (o *Orchestrator) Submit(ctx context.Context, req *models.CreateCampaignRequest) (*models.Campaign, error) {
	if err := validateLocator(req.BusinessLocator); err != nil {
		return nil, err
	}
	for _, locator := range req.CompetitorLocators {
		if err := validateLocator(locator); err != nil {
			return nil, fmt.Errorf("%w: competitor %q", ErrInvalidLocator, locator)
		}
	}

	campaign := &models.Campaign{
		BusinessURL:    req.BusinessLocator,
		CompetitorURLs: req.CompetitorLocators,
		Status:         models.CampaignStatusPending,
		Message:        "Campaign accepted",
	}
	if err := o.store.CreateCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	if err := o.dispatch(campaign.ID); err != nil {
		logrus.Errorf("Failed to dispatch campaign %s: %v", campaign.ID, err)
		o.fail(context.Background(), campaign.ID, "", fmt.Errorf("failed to schedule execution: %w", err))
		return nil, fmt.Errorf("failed to schedule campaign execution: %w", err)
	}

	logrus.Infof("Campaign %s submitted for %s", campaign.ID, campaign.BusinessURL)
	return campaign, nil
}

func validateLocator(locator string) error {
	if locator == "" {
		return ErrInvalidLocator
	}
	parsed, err := url.Parse(locator)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: must be an absolute http(s) URL", ErrInvalidLocator)
	}
	return nil
}

// Execute runs the full pipeline for one campaign. It is invoked on a
// background goroutine by the runner (or a queue worker) and never
// propagates errors: failures land in the campaign record.
func (o *Orchestrator) Execute(ctx context.Context, campaignID string) {
	campaign, err := o.store.GetCampaign(ctx, campaignID)
	if err != nil {
		logrus.Errorf("Cannot load campaign %s for execution: %v", campaignID, err)
		return
	}
	if campaign.Status != models.CampaignStatusPending {
		// queue redelivery or duplicate dispatch; the record was already claimed
		logrus.Warnf("Campaign %s is %s, skipping execution", campaignID, campaign.Status)
		return
	}

	sc := &StageContext{
		Campaign:  campaign,
		Learnings: o.learningSvc.Texts(ctx, o.cfg.LearningLimit),
	}

	// Research
	if _, err := o.advance(ctx, campaignID, advanceArgs{
		status: models.CampaignStatusResearching, stage: StageResearch,
		pct: pctResearchStart, msg: "Researching business context",
	}); err != nil {
		o.fail(ctx, campaignID, StageResearch, err)
		return
	}
	research, err := o.runResearch(ctx, sc)
	if err != nil {
		o.fail(ctx, campaignID, StageResearch, err)
		return
	}
	sc.Research = research
	if _, err := o.advance(ctx, campaignID, advanceArgs{
		status: models.CampaignStatusStrategizing, stage: StageStrategy,
		pct: pctResearchDone, msg: "Research complete, building strategy",
		research: research,
	}); err != nil {
		o.fail(ctx, campaignID, StageResearch, err)
		return
	}

	// Strategy
	strategy, err := o.runStrategy(ctx, sc)
	if err != nil {
		o.fail(ctx, campaignID, StageStrategy, err)
		return
	}
	sc.Strategy = strategy
	if _, err := o.advance(ctx, campaignID, advanceArgs{
		status: models.CampaignStatusProducing, stage: StageCreative,
		pct: pctStrategyDone, msg: "Strategy complete, generating assets",
		strategy: strategy,
	}); err != nil {
		o.fail(ctx, campaignID, StageStrategy, err)
		return
	}

	// Creative
	creative, err := o.runCreative(ctx, sc, campaignID)
	if err != nil {
		o.fail(ctx, campaignID, StageCreative, err)
		return
	}

	now := time.Now()
	completed, err := o.advance(ctx, campaignID, advanceArgs{
		status: models.CampaignStatusCompleted, clearStage: true,
		pct: pctCompleted, msg: "Campaign completed",
		creative: creative, completedAt: &now,
	})
	if err != nil {
		// completed work must not be lost silently
		o.fail(ctx, campaignID, StageCreative, err)
		return
	}
	logrus.Infof("Campaign %s completed", campaignID)

	if err := o.learningSvc.ExtractAndStore(ctx, completed); err != nil {
		logrus.Warnf("Campaign %s: learning extraction failed: %v", campaignID, err)
	}
}

func (o *Orchestrator) runResearch(ctx context.Context, sc *StageContext) (*models.ResearchResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.ResearchTimeout)
	defer cancel()
	return o.researcher.Execute(stageCtx, sc)
}

func (o *Orchestrator) runStrategy(ctx context.Context, sc *StageContext) (*models.StrategyResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StrategyTimeout)
	defer cancel()
	return o.strategist.Execute(stageCtx, sc)
}

func (o *Orchestrator) runCreative(ctx context.Context, sc *StageContext, campaignID string) (*models.CreativeResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.CreativeTimeout)
	defer cancel()

	totalDays := len(sc.Strategy.Days)
	return o.producer.Execute(stageCtx, sc, func(done int, day *models.DayAssets) {
		pct := pctStrategyDone + done*(pctCreativeDone-pctStrategyDone)/totalDays
		msg := fmt.Sprintf("Generated assets for day %d (%d of %d done)", day.Day, done, totalDays)
		// progress loss is tolerable mid-stage; result persistence is not
		if _, err := o.advance(ctx, campaignID, advanceArgs{pct: pct, msg: msg, stageName: StageCreative}); err != nil {
			logrus.Warnf("Campaign %s: failed to persist day progress: %v", campaignID, err)
		}
	})
}

type advanceArgs struct {
	status      models.CampaignStatus
	stage       string // sets current_stage when non-empty
	stageName   string // event stage label when current_stage is unchanged
	clearStage  bool
	pct         int
	msg         string
	research    *models.ResearchResult
	strategy    *models.StrategyResult
	creative    *models.CreativeResult
	completedAt *time.Time
}

// advance persists a partial update together with its progress event and
// broadcasts the event to streaming subscribers.
func (o *Orchestrator) advance(ctx context.Context, campaignID string, args advanceArgs) (*models.Campaign, error) {
	upd := store.CampaignUpdate{
		Progress:    &args.pct,
		Message:     &args.msg,
		Research:    args.research,
		Strategy:    args.strategy,
		Creative:    args.creative,
		CompletedAt: args.completedAt,
		ClearStage:  args.clearStage,
	}
	if args.status != "" {
		upd.Status = &args.status
	}
	if args.stage != "" {
		upd.Stage = &args.stage
	}

	eventStage := args.stage
	if eventStage == "" {
		eventStage = args.stageName
	}
	event := &models.ProgressEvent{
		CampaignID: campaignID,
		Stage:      eventStage,
		Percentage: args.pct,
		Message:    args.msg,
	}

	campaign, err := o.store.Advance(ctx, campaignID, upd, event)
	if err != nil {
		return nil, err
	}
	if o.hub != nil {
		o.hub.Broadcast(event)
	}
	return campaign, nil
}

// fail moves the campaign to the failed terminal state, keeping partial
// results and the last good progress percentage.
func (o *Orchestrator) fail(ctx context.Context, campaignID, stage string, cause error) {
	logrus.Errorf("Campaign %s failed in %s: %v", campaignID, stage, cause)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("campaign_id", campaignID)
		scope.SetTag("stage", stage)
		sentry.CaptureException(cause)
	})

	status := models.CampaignStatusFailed
	msg := fmt.Sprintf("Campaign failed: %v", cause)
	event := &models.ProgressEvent{
		CampaignID: campaignID,
		Stage:      stage,
		Message:    msg,
	}
	campaign, err := o.store.GetCampaign(ctx, campaignID)
	if err == nil {
		event.Percentage = campaign.Progress
	}

	if _, err := o.store.Advance(ctx, campaignID, store.CampaignUpdate{
		Status:  &status,
		Message: &msg,
	}, event); err != nil {
		logrus.Errorf("Failed to record failure of campaign %s: %v", campaignID, err)
		return
	}
	if o.hub != nil {
		o.hub.Broadcast(event)
	}
}

// Store exposes the gateway for the read-side access layer
func (o *Orchestrator) Store() store.Gateway {
	return o.store
}
