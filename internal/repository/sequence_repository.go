package repository

import (
	"database/sql"

	"github.com/coldreach/outreach-backend/internal/model"
)

type SequenceRepositoryInterface interface {
	ListSteps(sequenceID int64) ([]model.SequenceStep, error)
	GetStep(stepID int64) (*model.SequenceStep, error)

	// NextStep returns the step following afterStepNumber, or nil when the
	// sequence ends there.
	NextStep(sequenceID int64, afterStepNumber int) (*model.SequenceStep, error)
}

type SequenceRepository struct {
	DB *sql.DB
}

func (r *SequenceRepository) ListSteps(sequenceID int64) ([]model.SequenceStep, error) {
	query := `
        SELECT id, sequence_id, step_number, delay_days, subject, body
        FROM sequence_steps
        WHERE sequence_id = $1
        ORDER BY step_number
    `
	rows, err := r.DB.Query(query, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := []model.SequenceStep{}
	for rows.Next() {
		var s model.SequenceStep
		if err := rows.Scan(&s.ID, &s.SequenceID, &s.StepNumber, &s.DelayDays, &s.Subject, &s.Body); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *SequenceRepository) GetStep(stepID int64) (*model.SequenceStep, error) {
	query := `
        SELECT id, sequence_id, step_number, delay_days, subject, body
        FROM sequence_steps
        WHERE id = $1
    `
	var s model.SequenceStep
	err := r.DB.QueryRow(query, stepID).Scan(&s.ID, &s.SequenceID, &s.StepNumber, &s.DelayDays, &s.Subject, &s.Body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SequenceRepository) NextStep(sequenceID int64, afterStepNumber int) (*model.SequenceStep, error) {
	query := `
        SELECT id, sequence_id, step_number, delay_days, subject, body
        FROM sequence_steps
        WHERE sequence_id = $1 AND step_number > $2
        ORDER BY step_number
        LIMIT 1
    `
	var s model.SequenceStep
	err := r.DB.QueryRow(query, sequenceID, afterStepNumber).Scan(&s.ID, &s.SequenceID, &s.StepNumber, &s.DelayDays, &s.Subject, &s.Body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

var _ SequenceRepositoryInterface = (*SequenceRepository)(nil)
