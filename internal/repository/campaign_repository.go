package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/coldreach/outreach-backend/internal/errors"
	"github.com/coldreach/outreach-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int64) (*model.Campaign, error)
	UpdateStatus(campaignID int64, status string) error
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)

	// ActivateWithJobs atomically inserts every expanded job and flips the
	// campaign to active. A failure anywhere rolls the whole expansion back
	// so a campaign is never partially enrolled.
	ActivateWithJobs(campaignID int64, jobs []*model.SendJob) error

	// GetStats returns per-status send-job counts for the campaign.
	GetStats(campaignID int64) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	query := `
        INSERT INTO campaigns (tenant_id, name, sequence_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	return r.DB.QueryRow(query, c.TenantID, c.Name, c.SequenceID, c.Status, c.CreatedAt).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id int64) (*model.Campaign, error) {
	query := `
        SELECT id, tenant_id, name, sequence_id, status, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.TenantID, &c.Name, &c.SequenceID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) UpdateStatus(campaignID int64, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT id, tenant_id, name, sequence_id, status, created_at, updated_at FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.SequenceID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) ActivateWithJobs(campaignID int64, jobs []*model.SendJob) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin expansion tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	insert := `
        INSERT INTO send_jobs
        (id, tenant_id, campaign_id, contact_id, sender_id, sequence_id, step_id,
         subject, body, send_at, status, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, NOW(), NOW())
    `
	for _, j := range jobs {
		_, err := tx.Exec(insert,
			j.ID, j.TenantID, j.CampaignID, j.ContactID, j.SenderID,
			j.SequenceID, j.StepID, j.Subject, j.Body, j.SendAt, j.Status,
		)
		if err != nil {
			return fmt.Errorf("insert send job for contact %d: %w", j.ContactID, err)
		}
	}

	if _, err := tx.Exec(`UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`,
		model.CampaignStatusActive, campaignID); err != nil {
		return fmt.Errorf("activate campaign %d: %w", campaignID, err)
	}

	return tx.Commit()
}

func (r *CampaignRepository) GetStats(campaignID int64) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM send_jobs WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		model.JobStatusQueued:      0,
		model.JobStatusSending:     0,
		model.JobStatusSent:        0,
		model.JobStatusFailed:      0,
		model.JobStatusRescheduled: 0,
	}
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		if _, ok := stats[status]; ok {
			stats[status] = count
		}
		total += count
	}
	stats["total"] = total
	return stats, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
