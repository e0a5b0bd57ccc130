package repository

import (
	"database/sql"

	"github.com/coldreach/outreach-backend/internal/model"
)

type SenderRepositoryInterface interface {
	GetByID(id int64) (*model.Sender, error)
	ListByTenant(tenantID int64) ([]model.Sender, error)
}

type SenderRepository struct {
	DB *sql.DB
}

func (r *SenderRepository) GetByID(id int64) (*model.Sender, error) {
	query := `
        SELECT id, tenant_id, email, display_name, credential, daily_limit, timezone
        FROM senders
        WHERE id = $1
    `
	var s model.Sender
	err := r.DB.QueryRow(query, id).Scan(&s.ID, &s.TenantID, &s.Email, &s.DisplayName, &s.Credential, &s.DailyLimit, &s.Timezone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &s, nil
}

// ListByTenant returns the tenant's sender mailboxes in stable id order, which
// keeps the round-robin picker deterministic.
func (r *SenderRepository) ListByTenant(tenantID int64) ([]model.Sender, error) {
	query := `
        SELECT id, tenant_id, email, display_name, credential, daily_limit, timezone
        FROM senders
        WHERE tenant_id = $1
        ORDER BY id
    `
	rows, err := r.DB.Query(query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	senders := []model.Sender{}
	for rows.Next() {
		var s model.Sender
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Email, &s.DisplayName, &s.Credential, &s.DailyLimit, &s.Timezone); err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	return senders, rows.Err()
}

var _ SenderRepositoryInterface = (*SenderRepository)(nil)
