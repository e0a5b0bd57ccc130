package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// QuotaRepositoryInterface answers "how many successful sends has this sender
// made today" and records one more. Increment is an atomic upsert, never a
// read-modify-write, so concurrent dispatch cycles cannot lose updates.
type QuotaRepositoryInterface interface {
	GetCount(senderID int64, day time.Time) (int, error)
	Increment(senderID int64, day time.Time) error
}

type QuotaRepository struct {
	DB *sql.DB
}

func (r *QuotaRepository) GetCount(senderID int64, day time.Time) (int, error) {
	query := `SELECT count FROM daily_send_counters WHERE sender_id=$1 AND day=$2`
	var count int
	err := r.DB.QueryRow(query, senderID, day.Format("2006-01-02")).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("read daily counter: %w", err)
	}
	return count, nil
}

func (r *QuotaRepository) Increment(senderID int64, day time.Time) error {
	query := `
        INSERT INTO daily_send_counters (sender_id, day, count)
        VALUES ($1, $2, 1)
        ON CONFLICT (sender_id, day)
        DO UPDATE SET count = daily_send_counters.count + 1
    `
	_, err := r.DB.Exec(query, senderID, day.Format("2006-01-02"))
	return err
}

var _ QuotaRepositoryInterface = (*QuotaRepository)(nil)
