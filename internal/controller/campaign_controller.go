// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/coldreach/outreach-backend/internal/errors"
	"github.com/coldreach/outreach-backend/internal/model"
	"github.com/coldreach/outreach-backend/internal/queue"
	"github.com/coldreach/outreach-backend/internal/repository"
)

type CampaignController struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Queue        queue.Queue
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID   int64  `json:"tenant_id"`
		Name       string `json:"name"`
		SequenceID int64  `json:"sequence_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Name == "" || body.SequenceID == 0 {
		http.Error(w, "name and sequence_id are required", http.StatusBadRequest)
		return
	}

	campaign := &model.Campaign{
		TenantID:   body.TenantID,
		Name:       body.Name,
		SequenceID: body.SequenceID,
		Status:     model.CampaignStatusDraft,
	}
	if err := c.CampaignRepo.Create(campaign); err != nil {
		http.Error(w, "failed to create campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := c.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, cp := range ptrs {
		campaigns[i] = *cp
	}

	totalPages := (total + pageSize - 1) / pageSize
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

// GetCampaign returns the campaign plus per-status send-job counts.
func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		writeCampaignError(w, err)
		return
	}

	stats, err := c.CampaignRepo.GetStats(id)
	if err != nil {
		http.Error(w, "failed to fetch stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign": campaign,
		"stats":    stats,
	})
}

// ActivateCampaign publishes an activation event for the dispatcher worker
// to expand. The expansion itself is asynchronous, hence 202.
func (c *CampaignController) ActivateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	if campaign.Status != model.CampaignStatusDraft && campaign.Status != model.CampaignStatusPaused {
		http.Error(w, "campaign cannot be activated in status: "+campaign.Status, http.StatusConflict)
		return
	}

	if err := c.Queue.Publish(queue.ActivationQueueName, queue.ActivationEvent{CampaignID: id}); err != nil {
		http.Error(w, "failed to queue activation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": id,
		"status":      "activation queued",
	})
}

func (c *CampaignController) PauseCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	if campaign.Status != model.CampaignStatusActive {
		http.Error(w, "campaign cannot be paused in status: "+campaign.Status, http.StatusConflict)
		return
	}

	if err := c.CampaignRepo.UpdateStatus(id, model.CampaignStatusPaused); err != nil {
		http.Error(w, "failed to pause campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": id,
		"status":      model.CampaignStatusPaused,
	})
}

func campaignID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeCampaignError(w http.ResponseWriter, err error) {
	var notFound *appErrors.ErrCampaignNotFound
	if errors.As(err, &notFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
