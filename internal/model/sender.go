// internal/model/sender.go
package model

// DefaultDailyLimit applies when a sender row has no explicit cap.
const DefaultDailyLimit = 40

// Sender is an authenticated outbound mailbox identity.
type Sender struct {
	ID          int64  `db:"id" json:"id"`
	TenantID    int64  `db:"tenant_id" json:"tenant_id"`
	Email       string `db:"email" json:"email"`
	DisplayName string `db:"display_name" json:"display_name"`
	Credential  string `db:"credential" json:"-"`
	DailyLimit  int    `db:"daily_limit" json:"daily_limit"`
	Timezone    string `db:"timezone" json:"timezone"`
}

// EffectiveDailyLimit resolves the sender's cap: the row's own limit, then
// the configured fallback, then the platform default.
func (s *Sender) EffectiveDailyLimit(fallback int) int {
	if s.DailyLimit > 0 {
		return s.DailyLimit
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultDailyLimit
}
