// internal/handler/job_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coldreach/outreach-backend/internal/repository"
)

// JobHandler exposes the send-job queue for operators and dashboards.
type JobHandler struct {
	JobRepo repository.SendJobRepositoryInterface
}

// ListCampaignJobs returns a page of a campaign's send jobs, optionally
// filtered by status.
func (h *JobHandler) ListCampaignJobs(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	status := r.URL.Query().Get("status")

	jobs, total, err := h.JobRepo.ListByCampaign(campaignID, status, (page-1)*pageSize, pageSize)
	if err != nil {
		http.Error(w, "failed to fetch jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": jobs,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
		},
	})
}
