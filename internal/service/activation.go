// internal/service/activation.go
package service

import (
	"encoding/json"
	"log"

	appErrors "github.com/coldreach/outreach-backend/internal/errors"
	"github.com/coldreach/outreach-backend/internal/queue"
)

// ActivationHandler adapts the expander to a queue subscription. Precondition
// failures (missing campaign, wrong status, empty sequence, no senders) can
// never succeed on redelivery, so they are logged and acked; any other error
// is returned so the broker requeues the event.
func ActivationHandler(e *Expander) func(payload any) error {
	return func(payload any) error {
		var ev queue.ActivationEvent
		switch p := payload.(type) {
		case queue.ActivationEvent:
			ev = p
		case json.RawMessage:
			if err := json.Unmarshal(p, &ev); err != nil {
				log.Println("⚠️ invalid activation event:", err)
				return nil
			}
		default:
			log.Printf("⚠️ unexpected activation payload type %T", payload)
			return nil
		}

		if err := e.ActivateCampaign(ev.CampaignID); err != nil {
			if appErrors.IsPrecondition(err) {
				log.Printf("⚠️ dropping activation for campaign %d: %v", ev.CampaignID, err)
				return nil
			}
			return err
		}
		return nil
	}
}
