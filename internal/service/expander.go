// internal/service/expander.go
package service

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/coldreach/outreach-backend/internal/config"
	appErrors "github.com/coldreach/outreach-backend/internal/errors"
	"github.com/coldreach/outreach-backend/internal/model"
	"github.com/coldreach/outreach-backend/internal/repository"
)

// Jitter bounds for the gap between consecutive scheduled sends.
const (
	minJitter = 90 * time.Second
	maxJitter = 300 * time.Second
)

// Expander turns a campaign activation into one send job per enrolled
// contact for the sequence's first step.
type Expander struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	SenderRepo   repository.SenderRepositoryInterface
	SequenceRepo repository.SequenceRepositoryInterface
	Picker       SenderPicker
	Footer       config.FooterConfig

	// Now and Jitter are swappable for tests.
	Now    func() time.Time
	Jitter func() time.Duration
}

func defaultJitter() time.Duration {
	span := int64((maxJitter - minJitter) / time.Second)
	return minJitter + time.Duration(rand.Int63n(span+1))*time.Second
}

func (e *Expander) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Expander) jitter() time.Duration {
	if e.Jitter != nil {
		return e.Jitter()
	}
	return defaultJitter()
}

func (e *Expander) picker() SenderPicker {
	if e.Picker != nil {
		return e.Picker
	}
	return &RoundRobinPicker{}
}

// ActivateCampaign expands the campaign into send jobs for its first sequence
// step and flips it to active, all atomically. Send times step forward from
// "now" by a fresh jitter per contact, so the schedule staggers across the
// whole list instead of bursting.
func (e *Expander) ActivateCampaign(campaignID int64) error {
	campaign, err := e.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != model.CampaignStatusDraft && campaign.Status != model.CampaignStatusPaused {
		return appErrors.NewInvalidCampaignStatus(campaignID, campaign.Status)
	}

	steps, err := e.SequenceRepo.ListSteps(campaign.SequenceID)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return appErrors.ErrEmptySequence
	}
	firstStep := steps[0]

	contacts, err := e.ContactRepo.ListByCampaign(campaignID)
	if err != nil {
		return err
	}

	senders, err := e.SenderRepo.ListByTenant(campaign.TenantID)
	if err != nil {
		return err
	}
	if len(senders) == 0 {
		return appErrors.ErrNoSenderForOwner
	}

	pick := e.picker()
	anchor := e.now()
	jobs := make([]*model.SendJob, 0, len(contacts))

	for i := range contacts {
		contact := &contacts[i]
		sender := pick.Pick(senders)
		anchor = anchor.Add(e.jitter())

		body := RenderTemplate(firstStep.Body, contact) + ComplianceFooter(sender.DisplayName, e.Footer)
		jobs = append(jobs, &model.SendJob{
			ID:         uuid.New(),
			TenantID:   campaign.TenantID,
			CampaignID: campaign.ID,
			ContactID:  contact.ID,
			SenderID:   sender.ID,
			SequenceID: campaign.SequenceID,
			StepID:     firstStep.ID,
			Subject:    RenderTemplate(firstStep.Subject, contact),
			Body:       body,
			SendAt:     anchor,
			Status:     model.JobStatusQueued,
		})
	}

	if err := e.CampaignRepo.ActivateWithJobs(campaignID, jobs); err != nil {
		return err
	}

	log.Printf("campaign %d activated: %d send jobs enqueued", campaignID, len(jobs))
	return nil
}
