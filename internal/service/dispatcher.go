// internal/service/dispatcher.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/coldreach/outreach-backend/internal/config"
	"github.com/coldreach/outreach-backend/internal/mailer"
	"github.com/coldreach/outreach-backend/internal/model"
	"github.com/coldreach/outreach-backend/internal/repository"
)

// DispatchResult is one per-job outcome from a cycle, surfaced for
// observability; the loop itself does not act on it further.
type DispatchResult struct {
	JobID   uuid.UUID `json:"job_id"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
}

// ResultSkipped marks a job another cycle claimed first; the job itself keeps
// whatever status the winner gave it.
const ResultSkipped = "skipped"

// Dispatcher runs the recurring admission-and-send cycle over the job queue.
type Dispatcher struct {
	JobRepo      repository.SendJobRepositoryInterface
	SenderRepo   repository.SenderRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	SequenceRepo repository.SequenceRepositoryInterface
	QuotaRepo    repository.QuotaRepositoryInterface
	Mailer       mailer.Mailer
	Credentials  mailer.CredentialResolver
	Config       config.DispatchConfig
	Footer       config.FooterConfig

	// Now is swappable for tests.
	Now func() time.Time
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) credentials() mailer.CredentialResolver {
	if d.Credentials != nil {
		return d.Credentials
	}
	return mailer.StoredCredentialResolver{}
}

// RunCycle performs one dispatch invocation: sweep stuck claims, select due
// jobs, and process them sequentially in send_at order. Storage errors on
// the queue itself abort the cycle; per-job errors never do.
func (d *Dispatcher) RunCycle(ctx context.Context) ([]DispatchResult, error) {
	now := d.now()

	if d.Config.StuckAfter > 0 {
		released, err := d.JobRepo.ReleaseStuck(now.Add(-d.Config.StuckAfter))
		if err != nil {
			return nil, err
		}
		if released > 0 {
			log.Printf("released %d jobs stuck in sending", released)
		}
	}

	jobs, err := d.JobRepo.SelectDue(now, d.Config.BatchSize)
	if err != nil {
		return nil, err
	}

	results := make([]DispatchResult, 0, len(jobs))
	for i := range jobs {
		results = append(results, d.processJob(ctx, &jobs[i], now))
	}
	return results, nil
}

func (d *Dispatcher) processJob(ctx context.Context, job *model.SendJob, now time.Time) DispatchResult {
	sender, err := d.SenderRepo.GetByID(job.SenderID)
	if err != nil {
		return d.fail(job.ID, "sender lookup failed: "+err.Error())
	}
	contact, err := d.ContactRepo.GetByID(job.ContactID)
	if err != nil {
		return d.fail(job.ID, "contact lookup failed: "+err.Error())
	}
	if sender == nil || contact == nil {
		return d.fail(job.ID, "missing reference")
	}

	limit := sender.EffectiveDailyLimit(d.Config.DefaultDailyLimit)

	count, err := d.QuotaRepo.GetCount(sender.ID, now)
	if err != nil {
		return d.fail(job.ID, "quota lookup failed: "+err.Error())
	}
	if count >= limit {
		deferred := job.SendAt.Add(24 * time.Hour)
		if err := d.JobRepo.Reschedule(job.ID, deferred, "daily limit reached"); err != nil {
			return d.fail(job.ID, "reschedule failed: "+err.Error())
		}
		return DispatchResult{JobID: job.ID, Status: model.JobStatusRescheduled, Message: "daily limit reached"}
	}

	// Optimistic claim: losing the race to an overlapping cycle is not an
	// error, the job just belongs to the winner now.
	claimed, err := d.JobRepo.Claim(job.ID)
	if err != nil {
		return d.fail(job.ID, "claim failed: "+err.Error())
	}
	if !claimed {
		return DispatchResult{JobID: job.ID, Status: ResultSkipped, Message: "claimed by another cycle"}
	}

	cred, err := d.credentials().Resolve(ctx, sender.ID, sender.Credential)
	if err != nil {
		return d.handleSendFailure(job, now, mailer.AsSendError(err))
	}

	sendCtx := ctx
	if d.Config.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.Config.SendTimeout)
		defer cancel()
	}

	err = d.Mailer.Send(sendCtx, mailer.Message{
		Credential: cred,
		FromName:   sender.DisplayName,
		FromEmail:  sender.Email,
		To:         contact.Email,
		Subject:    job.Subject,
		Body:       job.Body,
	})
	if err != nil {
		return d.handleSendFailure(job, now, mailer.AsSendError(err))
	}

	if err := d.JobRepo.MarkSentAndCount(job.ID, sender.ID, now); err != nil {
		// The provider accepted the message; losing the status write is a
		// queue-storage problem, surfaced on the job.
		return d.fail(job.ID, "record send failed: "+err.Error())
	}

	if err := d.enqueueNextStep(job, contact, sender, now); err != nil {
		log.Printf("next step for job %s not enqueued: %v", job.ID, err)
	}

	return DispatchResult{JobID: job.ID, Status: model.JobStatusSent}
}

func (d *Dispatcher) handleSendFailure(job *model.SendJob, now time.Time, se *mailer.SendError) DispatchResult {
	if se.Retryable() && job.RetryCount < d.Config.MaxRetries {
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Minute
		if err := d.JobRepo.Requeue(job.ID, now.Add(backoff), se.Reason, job.RetryCount+1); err != nil {
			return d.fail(job.ID, "requeue failed: "+err.Error())
		}
		return DispatchResult{JobID: job.ID, Status: model.JobStatusQueued, Message: se.Reason}
	}
	return d.fail(job.ID, se.Reason)
}

func (d *Dispatcher) fail(id uuid.UUID, msg string) DispatchResult {
	if err := d.JobRepo.MarkFailed(id, msg); err != nil {
		log.Printf("failed to mark job %s failed: %v", id, err)
	}
	return DispatchResult{JobID: id, Status: model.JobStatusFailed, Message: msg}
}

// enqueueNextStep schedules the sequence's next message for this contact
// after a successful send, rendered the same way the expander renders step
// one. No next step means the contact has finished the sequence.
func (d *Dispatcher) enqueueNextStep(job *model.SendJob, contact *model.Contact, sender *model.Sender, now time.Time) error {
	current, err := d.SequenceRepo.GetStep(job.StepID)
	if err != nil || current == nil {
		return err
	}
	next, err := d.SequenceRepo.NextStep(job.SequenceID, current.StepNumber)
	if err != nil || next == nil {
		return err
	}

	body := RenderTemplate(next.Body, contact) + ComplianceFooter(sender.DisplayName, d.Footer)
	return d.JobRepo.Create(&model.SendJob{
		ID:         uuid.New(),
		TenantID:   job.TenantID,
		CampaignID: job.CampaignID,
		ContactID:  contact.ID,
		SenderID:   sender.ID,
		SequenceID: job.SequenceID,
		StepID:     next.ID,
		Subject:    RenderTemplate(next.Subject, contact),
		Body:       body,
		SendAt:     now.AddDate(0, 0, next.DelayDays),
		Status:     model.JobStatusQueued,
	})
}
