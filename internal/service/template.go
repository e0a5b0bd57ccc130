// internal/service/template.go
package service

import (
	"fmt"
	"strings"

	"github.com/coldreach/outreach-backend/internal/config"
	"github.com/coldreach/outreach-backend/internal/model"
)

// RenderTemplate substitutes merge tags from the contact's attributes.
// Tags are applied in a fixed order so rendering is reproducible; tags with
// no matching attribute are left verbatim in the output.
func RenderTemplate(template string, contact *model.Contact) string {
	pairs := []struct{ tag, value string }{
		{"{{firstName}}", contact.FirstName},
		{"{{lastName}}", contact.LastName},
		{"{{companyName}}", contact.Company},
		{"{{title}}", contact.Title},
		{"{{city}}", contact.City},
		{"{{email}}", contact.Email},
	}

	result := template
	for _, p := range pairs {
		result = strings.ReplaceAll(result, p.tag, p.value)
	}
	return result
}

// ComplianceFooter builds the footer appended to every outbound body. It is
// appended unconditionally, even if the body already carries one.
func ComplianceFooter(senderName string, cfg config.FooterConfig) string {
	return fmt.Sprintf("\n\n--\nSent by %s, %s\nUnsubscribe: %s",
		senderName, cfg.PhysicalAddress, cfg.UnsubscribeURL)
}
