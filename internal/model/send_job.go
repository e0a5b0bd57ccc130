// internal/model/send_job.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusQueued      = "queued"
	JobStatusSending     = "sending"
	JobStatusSent        = "sent"
	JobStatusFailed      = "failed"
	JobStatusRescheduled = "rescheduled"
)

// SendJob is one scheduled attempt to deliver a single sequence step to a
// single contact. Subject and body are fully rendered at enqueue time,
// compliance footer included.
type SendJob struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     int64     `db:"tenant_id" json:"tenant_id"`
	CampaignID   int64     `db:"campaign_id" json:"campaign_id"`
	ContactID    int64     `db:"contact_id" json:"contact_id"`
	SenderID     int64     `db:"sender_id" json:"sender_id"`
	SequenceID   int64     `db:"sequence_id" json:"sequence_id"`
	StepID       int64     `db:"step_id" json:"step_id"`
	Subject      string    `db:"subject" json:"subject"`
	Body         string    `db:"body" json:"body"`
	SendAt       time.Time `db:"send_at" json:"send_at"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int       `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
