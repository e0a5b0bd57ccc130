// internal/service/picker.go
package service

import "github.com/coldreach/outreach-backend/internal/model"

// SenderPicker chooses which of the owner's mailboxes carries each expanded
// job. Campaign fairness across mailboxes depends on this choice, so it is
// pluggable; RoundRobinPicker is the default.
type SenderPicker interface {
	Pick(senders []model.Sender) *model.Sender
}

// RoundRobinPicker cycles through the sender list in order. Not safe for
// concurrent use; the expander calls it from a single goroutine.
type RoundRobinPicker struct {
	next int
}

func (p *RoundRobinPicker) Pick(senders []model.Sender) *model.Sender {
	if len(senders) == 0 {
		return nil
	}
	s := &senders[p.next%len(senders)]
	p.next++
	return s
}

// FirstAvailablePicker always picks the first sender, matching the minimal
// policy of simply taking whichever mailbox comes back first.
type FirstAvailablePicker struct{}

func (FirstAvailablePicker) Pick(senders []model.Sender) *model.Sender {
	if len(senders) == 0 {
		return nil
	}
	return &senders[0]
}
