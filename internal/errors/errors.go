// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// Sentinels for precondition failures surfaced to API callers.
var (
	ErrEmptySequence    = errors.New("sequence has no steps")
	ErrNoSenderForOwner = errors.New("no sender available for campaign owner")
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int64
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int64) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrInvalidCampaignStatus reports an activation or pause attempt against a
// campaign whose status does not admit the transition.
type ErrInvalidCampaignStatus struct {
	CampaignID int64
	Status     string
}

func (e *ErrInvalidCampaignStatus) Error() string {
	return fmt.Sprintf("campaign %d cannot transition from status %q", e.CampaignID, e.Status)
}

func NewInvalidCampaignStatus(id int64, status string) error {
	return &ErrInvalidCampaignStatus{CampaignID: id, Status: status}
}

// IsPrecondition reports whether err is a precondition failure that retrying
// the same operation can never fix. Queue consumers drop these instead of
// requeueing.
func IsPrecondition(err error) bool {
	var notFound *ErrCampaignNotFound
	var badStatus *ErrInvalidCampaignStatus
	return errors.Is(err, ErrEmptySequence) ||
		errors.Is(err, ErrNoSenderForOwner) ||
		errors.As(err, &notFound) ||
		errors.As(err, &badStatus)
}
