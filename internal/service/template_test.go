package service_test

import (
	"strings"
	"testing"

	"github.com/coldreach/outreach-backend/internal/config"
	"github.com/coldreach/outreach-backend/internal/model"
	"github.com/coldreach/outreach-backend/internal/service"
)

func TestRenderTemplateSubstitutesTags(t *testing.T) {
	contact := &model.Contact{
		FirstName: "Alice",
		LastName:  "Smith",
		Company:   "Acme",
		Title:     "CTO",
		City:      "Nairobi",
		Email:     "alice@acme.test",
	}

	got := service.RenderTemplate(
		"Hi {{firstName}} {{lastName}}, is {{companyName}} hiring a {{title}} in {{city}}? ({{email}})",
		contact,
	)
	want := "Hi Alice Smith, is Acme hiring a CTO in Nairobi? (alice@acme.test)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderTemplateLeavesUnresolvedTagsVerbatim(t *testing.T) {
	contact := &model.Contact{FirstName: "Alice"}

	got := service.RenderTemplate("Hi {{firstName}}, regards {{accountManager}}", contact)
	if !strings.Contains(got, "{{accountManager}}") {
		t.Errorf("unknown tag should remain verbatim, got %q", got)
	}
	if strings.Contains(got, "{{firstName}}") {
		t.Errorf("known tag should be substituted, got %q", got)
	}
}

func TestRenderTemplateEmptyAttributes(t *testing.T) {
	got := service.RenderTemplate("Hi {{firstName}}!", &model.Contact{})
	if got != "Hi !" {
		t.Errorf("empty attribute should substitute as empty string, got %q", got)
	}
}

func TestComplianceFooterContents(t *testing.T) {
	cfg := config.FooterConfig{
		PhysicalAddress: "1 Test Way, Testville",
		UnsubscribeURL:  "https://example.test/unsubscribe",
	}
	footer := service.ComplianceFooter("Amy", cfg)

	for _, want := range []string{"Amy", cfg.PhysicalAddress, cfg.UnsubscribeURL} {
		if !strings.Contains(footer, want) {
			t.Errorf("footer missing %q: %q", want, footer)
		}
	}
	if !strings.HasPrefix(footer, "\n\n") {
		t.Errorf("footer must start on its own paragraph, got %q", footer)
	}
}
