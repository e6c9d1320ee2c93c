package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pulsecraft/marketing-engine-backend/internal/models"
)

// ProgressHub manages Server-Sent Events connections for real-time
// campaign progress streaming, keyed by campaign id.
type ProgressHub struct {
	clients map[string]map[chan []byte]bool
	mu      sync.RWMutex
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		clients: make(map[string]map[chan []byte]bool),
	}
}

// RegisterClient registers a new SSE client for a campaign
func (h *ProgressHub) RegisterClient(campaignID string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientChan := make(chan []byte, 10) // Buffer size 10
	if h.clients[campaignID] == nil {
		h.clients[campaignID] = make(map[chan []byte]bool)
	}
	h.clients[campaignID][clientChan] = true

	logrus.Infof("SSE client registered for campaign %s (total clients: %d)", campaignID, len(h.clients[campaignID]))
	return clientChan
}

// UnregisterClient unregisters an SSE client
func (h *ProgressHub) UnregisterClient(campaignID string, clientChan chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[campaignID] != nil {
		delete(h.clients[campaignID], clientChan)
		close(clientChan)

		if len(h.clients[campaignID]) == 0 {
			delete(h.clients, campaignID)
		}
	}

	logrus.Infof("SSE client unregistered for campaign %s (remaining clients: %d)", campaignID, len(h.clients[campaignID]))
}

// Broadcast sends a progress event to all clients watching its campaign.
func (h *ProgressHub) Broadcast(event *models.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[event.CampaignID]
	if len(clients) == 0 {
		return
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		logrus.Errorf("Failed to marshal progress event for SSE: %v", err)
		return
	}

	message := fmt.Sprintf("event: progress\ndata: %s\n\n", string(eventJSON))

	// Send to all clients (non-blocking)
	for clientChan := range clients {
		select {
		case clientChan <- []byte(message):
		default:
			// Channel is full, skip this client
			logrus.Warnf("SSE client channel full, skipping: %s", event.CampaignID)
		}
	}
}

// GetClientCount returns the number of clients watching a campaign
func (h *ProgressHub) GetClientCount(campaignID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, exists := h.clients[campaignID]; exists {
		return len(clients)
	}
	return 0
}

// SendHeartbeat sends a heartbeat message to keep connections alive
func (h *ProgressHub) SendHeartbeat(campaignID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, exists := h.clients[campaignID]
	if !exists {
		return
	}

	heartbeat := fmt.Sprintf(": heartbeat %s\n\n", time.Now().Format(time.RFC3339))
	for clientChan := range clients {
		select {
		case clientChan <- []byte(heartbeat):
		default:
			// Skip if channel is full
		}
	}
}
