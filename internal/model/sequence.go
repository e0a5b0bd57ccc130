// internal/model/sequence.go
package model

type Sequence struct {
	ID       int64  `db:"id" json:"id"`
	TenantID int64  `db:"tenant_id" json:"tenant_id"`
	Name     string `db:"name" json:"name"`
}

// SequenceStep is one message template in an ordered sequence. DelayDays is
// counted from the previous step's send; the first step has the lowest
// StepNumber.
type SequenceStep struct {
	ID         int64  `db:"id" json:"id"`
	SequenceID int64  `db:"sequence_id" json:"sequence_id"`
	StepNumber int    `db:"step_number" json:"step_number"`
	DelayDays  int    `db:"delay_days" json:"delay_days"`
	Subject    string `db:"subject" json:"subject"`
	Body       string `db:"body" json:"body"`
}
