// internal/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a delivery failure. The dispatcher keys retry policy off
// this, never off provider-specific error text.
type Kind string

const (
	KindAuthExpired Kind = "auth_expired"
	KindRateLimited Kind = "provider_rate_limited"
	KindPermanent   Kind = "permanent"
	KindTransient   Kind = "transient"
)

// SendError is the typed failure every provider adapter must map into.
// Reason is safe to persist: adapters must never copy credential material
// into it.
type SendError struct {
	Kind   Kind
	Reason string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Retryable reports whether the failure is worth another attempt.
func (e *SendError) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindRateLimited
}

// AsSendError unwraps err into a *SendError, defaulting unknown errors to
// transient so an unexpected failure never becomes silently terminal.
func AsSendError(err error) *SendError {
	var se *SendError
	if errors.As(err, &se) {
		return se
	}
	return &SendError{Kind: KindTransient, Reason: err.Error()}
}

// Message is one outbound email handed to the send capability.
type Message struct {
	Credential string
	FromName   string
	FromEmail  string
	To         string
	Subject    string
	Body       string
}

// Mailer attempts delivery of a single message. Implementations must respect
// ctx cancellation so a hung provider call cannot stall a dispatch batch.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// CredentialResolver obtains a valid send credential for a sender mailbox.
// The default implementation reads the stored credential; integrations that
// refresh OAuth tokens plug in here.
type CredentialResolver interface {
	Resolve(ctx context.Context, senderID int64, stored string) (string, error)
}

// StoredCredentialResolver returns the credential as persisted on the sender
// row, failing when it is empty.
type StoredCredentialResolver struct{}

func (StoredCredentialResolver) Resolve(_ context.Context, senderID int64, stored string) (string, error) {
	if stored == "" {
		return "", &SendError{Kind: KindAuthExpired, Reason: fmt.Sprintf("no credential on file for sender %d", senderID)}
	}
	return stored, nil
}
