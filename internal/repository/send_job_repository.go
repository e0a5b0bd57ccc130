package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coldreach/outreach-backend/internal/model"
)

type SendJobRepositoryInterface interface {
	Create(job *model.SendJob) error
	GetByID(id uuid.UUID) (*model.SendJob, error)

	// SelectDue returns up to limit jobs that are eligible to send: status
	// queued or rescheduled, send_at elapsed, owning campaign still active.
	// Earliest-due first, ties broken by id for determinism.
	SelectDue(now time.Time, limit int) ([]model.SendJob, error)

	// Claim flips the job to sending iff it is still claimable. The boolean
	// reports whether this caller won the claim; a lost race returns false,
	// not an error.
	Claim(id uuid.UUID) (bool, error)

	// MarkSentAndCount records delivery and bumps the sender's daily counter
	// in one transaction, so "sent" and "counted" cannot diverge.
	MarkSentAndCount(id uuid.UUID, senderID int64, day time.Time) error

	MarkFailed(id uuid.UUID, errMsg string) error

	// Reschedule defers the job without consuming a retry, recording why.
	Reschedule(id uuid.UUID, sendAt time.Time, reason string) error

	// Requeue puts a transiently failed job back in line with a bumped
	// retry count and a backoff-adjusted send_at.
	Requeue(id uuid.UUID, sendAt time.Time, errMsg string, retryCount int) error

	// ReleaseStuck re-queues jobs abandoned mid-send (claimed before the
	// cutoff but never resolved) and reports how many were recovered.
	ReleaseStuck(cutoff time.Time) (int64, error)

	ListByCampaign(campaignID int64, status string, offset, limit int) ([]model.SendJob, int, error)
}

type SendJobRepository struct {
	DB *sql.DB
}

const jobColumns = `id, tenant_id, campaign_id, contact_id, sender_id, sequence_id, step_id,
          subject, body, send_at, status, error_message, retry_count, created_at, updated_at`

func scanJob(row interface{ Scan(...interface{}) error }) (*model.SendJob, error) {
	var j model.SendJob
	err := row.Scan(
		&j.ID, &j.TenantID, &j.CampaignID, &j.ContactID, &j.SenderID,
		&j.SequenceID, &j.StepID, &j.Subject, &j.Body, &j.SendAt,
		&j.Status, &j.ErrorMessage, &j.RetryCount, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *SendJobRepository) Create(job *model.SendJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = model.JobStatusQueued
	}
	query := `
        INSERT INTO send_jobs
        (id, tenant_id, campaign_id, contact_id, sender_id, sequence_id, step_id,
         subject, body, send_at, status, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, NOW(), NOW())
    `
	_, err := r.DB.Exec(query,
		job.ID, job.TenantID, job.CampaignID, job.ContactID, job.SenderID,
		job.SequenceID, job.StepID, job.Subject, job.Body, job.SendAt, job.Status,
	)
	return err
}

func (r *SendJobRepository) GetByID(id uuid.UUID) (*model.SendJob, error) {
	query := `SELECT ` + jobColumns + ` FROM send_jobs WHERE id=$1`
	job, err := scanJob(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return job, err
}

func (r *SendJobRepository) SelectDue(now time.Time, limit int) ([]model.SendJob, error) {
	query := `
        SELECT j.id, j.tenant_id, j.campaign_id, j.contact_id, j.sender_id, j.sequence_id, j.step_id,
               j.subject, j.body, j.send_at, j.status, j.error_message, j.retry_count, j.created_at, j.updated_at
        FROM send_jobs j
        JOIN campaigns c ON c.id = j.campaign_id
        WHERE j.status IN ($1, $2)
          AND j.send_at <= $3
          AND c.status = $4
        ORDER BY j.send_at, j.id
        LIMIT $5
    `
	rows, err := r.DB.Query(query,
		model.JobStatusQueued, model.JobStatusRescheduled, now,
		model.CampaignStatusActive, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select due jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.SendJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *SendJobRepository) Claim(id uuid.UUID) (bool, error) {
	query := `
        UPDATE send_jobs
        SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status IN ($3, $4)
    `
	res, err := r.DB.Exec(query, model.JobStatusSending, id,
		model.JobStatusQueued, model.JobStatusRescheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SendJobRepository) MarkSentAndCount(id uuid.UUID, senderID int64, day time.Time) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin mark-sent tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE send_jobs SET status=$1, error_message='', updated_at=NOW() WHERE id=$2`,
		model.JobStatusSent, id,
	); err != nil {
		return fmt.Errorf("mark job %s sent: %w", id, err)
	}

	if _, err := tx.Exec(`
        INSERT INTO daily_send_counters (sender_id, day, count)
        VALUES ($1, $2, 1)
        ON CONFLICT (sender_id, day)
        DO UPDATE SET count = daily_send_counters.count + 1
    `, senderID, day.Format("2006-01-02")); err != nil {
		return fmt.Errorf("increment counter for sender %d: %w", senderID, err)
	}

	return tx.Commit()
}

// MarkFailed, Reschedule, and Requeue guard on the current status like Claim
// does, so a stale caller can never clobber another cycle's terminal write.

func (r *SendJobRepository) MarkFailed(id uuid.UUID, errMsg string) error {
	query := `
        UPDATE send_jobs
        SET status=$1, error_message=$2, updated_at=NOW()
        WHERE id=$3 AND status IN ($4, $5, $6)
    `
	_, err := r.DB.Exec(query, model.JobStatusFailed, errMsg, id,
		model.JobStatusQueued, model.JobStatusRescheduled, model.JobStatusSending)
	return err
}

func (r *SendJobRepository) Reschedule(id uuid.UUID, sendAt time.Time, reason string) error {
	query := `
        UPDATE send_jobs
        SET status=$1, send_at=$2, error_message=$3, updated_at=NOW()
        WHERE id=$4 AND status IN ($5, $6)
    `
	_, err := r.DB.Exec(query, model.JobStatusRescheduled, sendAt, reason, id,
		model.JobStatusQueued, model.JobStatusRescheduled)
	return err
}

func (r *SendJobRepository) Requeue(id uuid.UUID, sendAt time.Time, errMsg string, retryCount int) error {
	query := `
        UPDATE send_jobs
        SET status=$1, send_at=$2, error_message=$3, retry_count=$4, updated_at=NOW()
        WHERE id=$5 AND status=$6
    `
	_, err := r.DB.Exec(query, model.JobStatusQueued, sendAt, errMsg, retryCount, id,
		model.JobStatusSending)
	return err
}

func (r *SendJobRepository) ReleaseStuck(cutoff time.Time) (int64, error) {
	query := `
        UPDATE send_jobs
        SET status=$1, updated_at=NOW()
        WHERE status=$2 AND updated_at < $3
    `
	res, err := r.DB.Exec(query, model.JobStatusQueued, model.JobStatusSending, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SendJobRepository) ListByCampaign(campaignID int64, status string, offset, limit int) ([]model.SendJob, int, error) {
	query := `SELECT ` + jobColumns + ` FROM send_jobs WHERE campaign_id=$1`
	args := []interface{}{campaignID}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY send_at, id LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []model.SendJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *j)
	}

	countQuery := `SELECT COUNT(*) FROM send_jobs WHERE campaign_id=$1`
	argsCount := []interface{}{campaignID}
	if status != "" {
		countQuery += " AND status=$2"
		argsCount = append(argsCount, status)
	}
	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

var _ SendJobRepositoryInterface = (*SendJobRepository)(nil)
