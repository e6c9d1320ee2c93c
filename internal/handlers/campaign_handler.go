package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pulsecraft/marketing-engine-backend/internal/models"
	"github.com/pulsecraft/marketing-engine-backend/internal/services"
	"github.com/pulsecraft/marketing-engine-backend/internal/services/excel"
	"github.com/pulsecraft/marketing-engine-backend/internal/store"
	"github.com/pulsecraft/marketing-engine-backend/internal/utils"
)

type CampaignHandler struct {
	orchestrator *services.Orchestrator
	hub          *services.ProgressHub
	exporter     *excel.CalendarExporter
	store        store.Gateway
}

func NewCampaignHandler(orchestrator *services.Orchestrator, hub *services.ProgressHub) *CampaignHandler {
	return &CampaignHandler{
		orchestrator: orchestrator,
		hub:          hub,
		exporter:     excel.NewCalendarExporter(),
		store:        orchestrator.Store(),
	}
}

// CreateCampaign godoc
// @Summary Create a new campaign
// @Description Accept a business URL and start the research/strategy/creative pipeline asynchronously
// @Tags campaigns
// @Accept json
// @Produce json
// @Param request body models.CreateCampaignRequest true "Create campaign request"
// @Success 202 {object} models.CreateCampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	campaign, err := h.orchestrator.Submit(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLocator) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, models.CreateCampaignResponse{
		CampaignID: campaign.ID,
		Status:     "processing",
	})
}

// ListCampaigns godoc
// @Summary List campaigns
// @Description Get campaigns ordered newest first with pagination
// @Tags campaigns
// @Accept json
// @Produce json
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	page, pageSize := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("page_size"))
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	campaigns, total, err := h.store.ListCampaigns(c.Request.Context(), utils.CalculateOffset(page, pageSize), pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns", "details": err.Error()})
		return
	}

	statuses := make([]*models.CampaignStatusResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		statuses = append(statuses, campaign.ToStatusResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns":  statuses,
		"pagination": utils.CalculatePaginationInfo(int(total), page, pageSize),
	})
}

// GetCampaignStatus godoc
// @Summary Get campaign status
// @Description Get the lifecycle status, progress percentage and current stage of a campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignStatusResponse
// @Failure 404 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/status [get]
func (h *CampaignHandler) GetCampaignStatus(c *gin.Context) {
	campaign, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, campaign.ToStatusResponse())
}

// GetCampaignResult godoc
// @Summary Get campaign result
// @Description Get the stage payloads produced so far; all three are present once the campaign completes
// @Tags campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignResultResponse
// @Failure 404 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/result [get]
func (h *CampaignHandler) GetCampaignResult(c *gin.Context) {
	campaign, ok := h.loadCampaign(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, campaign.ToResultResponse())
}

// GetCampaignProgress godoc
// @Summary Get campaign progress history
// @Description Get the ordered list of progress events recorded for a campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {array} models.ProgressEvent
// @Failure 404 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/progress [get]
func (h *CampaignHandler) GetCampaignProgress(c *gin.Context) {
	campaign, ok := h.loadCampaign(c)
	if !ok {
		return
	}

	events, err := h.store.ListProgress(c.Request.Context(), campaign.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load progress", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

// StreamCampaignProgress godoc
// @Summary Stream campaign progress via Server-Sent Events (SSE)
// @Description Stream progress events for a campaign in real time
// @Tags campaigns
// @Accept json
// @Produce text/event-stream
// @Param id path string true "Campaign ID"
// @Success 200 "SSE stream"
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/progress/stream [get]
func (h *CampaignHandler) StreamCampaignProgress(c *gin.Context) {
	campaign, ok := h.loadCampaign(c)
	if !ok {
		return
	}

	// Set headers for SSE
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable buffering for nginx

	clientChan := h.hub.RegisterClient(campaign.ID)
	defer h.hub.UnregisterClient(campaign.ID, clientChan)

	c.SSEvent("connected", gin.H{
		"campaign_id": campaign.ID,
		"message":     "Connected to progress stream",
	})
	c.Writer.Flush()

	// Replay history so late subscribers see the full sequence
	if events, err := h.store.ListProgress(c.Request.Context(), campaign.ID); err == nil {
		for _, event := range events {
			c.SSEvent("progress", event)
			c.Writer.Flush()
		}
	}

	for {
		select {
		case <-c.Request.Context().Done():
			logrus.Infof("SSE client disconnected: %s", campaign.ID)
			return
		case message, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(message); err != nil {
				logrus.Errorf("Failed to write SSE message: %v", err)
				return
			}
			c.Writer.Flush()
		}
	}
}

// ExportCampaign godoc
// @Summary Export campaign calendar
// @Description Download the campaign's content calendar as an Excel workbook
// @Tags campaigns
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Campaign ID"
// @Success 200 "Excel file"
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/export [get]
func (h *CampaignHandler) ExportCampaign(c *gin.Context) {
	campaign, ok := h.loadCampaign(c)
	if !ok {
		return
	}

	if campaign.StrategyResult == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Campaign has no content calendar yet"})
		return
	}

	data, err := h.exporter.Export(campaign)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export campaign", "details": err.Error()})
		return
	}

	filename := h.exporter.Filename(campaign.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// loadCampaign resolves the :id path param, writing the error response
// itself when lookup fails.
func (h *CampaignHandler) loadCampaign(c *gin.Context) (*models.Campaign, bool) {
	campaign, err := h.store.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return nil, false
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable", "details": err.Error()})
		return nil, false
	}
	return campaign, true
}
