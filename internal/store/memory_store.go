package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// MemoryStore is an in-memory gateway used by tests and as a degraded
// fallback when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
	events    map[string][]*models.ProgressEvent
	learnings []*models.Learning
	nextLearn uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		campaigns: map[string]*models.Campaign{},
		events:    map[string][]*models.ProgressEvent{},
		nextLearn: 1,
	}
}

// cloneCampaign deep-copies via JSON so callers can never mutate stored state
func cloneCampaign(campaign *models.Campaign) *models.Campaign {
	raw, _ := json.Marshal(campaign)
	var out models.Campaign
	_ = json.Unmarshal(raw, &out)
	return &out
}

func (m *MemoryStore) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}
	now := time.Now()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusPending
	}
	m.campaigns[campaign.ID] = cloneCampaign(campaign)
	return nil
}

func (m *MemoryStore) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	campaign, ok := m.campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCampaign(campaign), nil
}

func (m *MemoryStore) UpdateCampaign(ctx context.Context, id string, upd CampaignUpdate) (*models.Campaign, error) {
	return m.Advance(ctx, id, upd, nil)
}

func (m *MemoryStore) Advance(ctx context.Context, id string, upd CampaignUpdate, event *models.ProgressEvent) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	campaign, ok := m.campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	// apply to a clone so a rejected update leaves the record untouched,
	// matching the transactional gorm gateway
	next := cloneCampaign(campaign)
	if err := applyUpdate(next, upd); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	m.campaigns[id] = next
	if event != nil {
		event.CampaignID = id
		m.appendEventLocked(event)
	}
	return cloneCampaign(next), nil
}

func (m *MemoryStore) ListCampaigns(ctx context.Context, offset, limit int) ([]*models.Campaign, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]*models.Campaign, 0, len(m.campaigns))
	for _, campaign := range m.campaigns {
		all = append(all, campaign)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []*models.Campaign{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	page := make([]*models.Campaign, 0, end-offset)
	for _, campaign := range all[offset:end] {
		page = append(page, cloneCampaign(campaign))
	}
	return page, total, nil
}

func (m *MemoryStore) appendEventLocked(event *models.ProgressEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.events[event.CampaignID] = append(m.events[event.CampaignID], event)
}

func (m *MemoryStore) AppendProgress(ctx context.Context, event *models.ProgressEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendEventLocked(event)
	return nil
}

func (m *MemoryStore) ListProgress(ctx context.Context, campaignID string) ([]*models.ProgressEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := m.events[campaignID]
	out := make([]*models.ProgressEvent, len(events))
	copy(out, events)
	return out, nil
}

func (m *MemoryStore) AppendLearning(ctx context.Context, learning *models.Learning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	learning.ID = m.nextLearn
	m.nextLearn++
	if learning.CreatedAt.IsZero() {
		learning.CreatedAt = time.Now()
	}
	m.learnings = append(m.learnings, learning)
	return nil
}

func (m *MemoryStore) Learnings(ctx context.Context, limit int) ([]*models.Learning, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	learnings := m.learnings
	if limit > 0 && len(learnings) > limit {
		learnings = learnings[len(learnings)-limit:]
	}
	out := make([]*models.Learning, len(learnings))
	copy(out, learnings)
	return out, nil
}
