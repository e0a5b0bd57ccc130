package repository

import (
	"database/sql"

	"github.com/coldreach/outreach-backend/internal/model"
)

// ContactRepositoryInterface defines methods used by the expander and dispatcher
type ContactRepositoryInterface interface {
	GetByID(id int64) (*model.Contact, error)
	ListByCampaign(campaignID int64) ([]model.Contact, error)
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

// GetByID fetches a contact by ID
func (r *ContactRepository) GetByID(id int64) (*model.Contact, error) {
	query := `
        SELECT id, tenant_id, email, first_name, last_name, company, title, city
        FROM contacts
        WHERE id = $1
    `
	row := r.DB.QueryRow(query, id)

	var c model.Contact
	if err := row.Scan(&c.ID, &c.TenantID, &c.Email, &c.FirstName, &c.LastName, &c.Company, &c.Title, &c.City); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

// ListByCampaign fetches every contact enrolled in the campaign, in enrollment
// order (the join table preserves insertion via contact id ordering).
func (r *ContactRepository) ListByCampaign(campaignID int64) ([]model.Contact, error) {
	query := `
        SELECT c.id, c.tenant_id, c.email, c.first_name, c.last_name, c.company, c.title, c.city
        FROM contacts c
        JOIN campaign_contacts cc ON cc.contact_id = c.id
        WHERE cc.campaign_id = $1
        ORDER BY c.id
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Email, &c.FirstName, &c.LastName, &c.Company, &c.Title, &c.City); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
