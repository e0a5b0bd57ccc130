// internal/mailer/provider.go
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ProviderClient delivers mail through an HTTP send API and maps the
// provider's responses into the SendError taxonomy.
type ProviderClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewProviderClient(baseURL string) *ProviderClient {
	return &ProviderClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{},
	}
}

type providerRequest struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (c *ProviderClient) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(providerRequest{
		FromName:  msg.FromName,
		FromEmail: msg.FromEmail,
		To:        msg.To,
		Subject:   msg.Subject,
		Body:      msg.Body,
	})
	if err != nil {
		return &SendError{Kind: KindPermanent, Reason: "encode send request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return &SendError{Kind: KindPermanent, Reason: "build send request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+msg.Credential)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Network failures and context timeouts land here.
		return &SendError{Kind: KindTransient, Reason: "provider unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Read a bounded slice of the body for the failure reason. The
	// Authorization header never appears here, so Reason stays safe to
	// persist on the job.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	reason := fmt.Sprintf("provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &SendError{Kind: KindAuthExpired, Reason: reason}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &SendError{Kind: KindRateLimited, Reason: reason}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &SendError{Kind: KindPermanent, Reason: reason}
	default:
		return &SendError{Kind: KindTransient, Reason: reason}
	}
}

var _ Mailer = (*ProviderClient)(nil)
