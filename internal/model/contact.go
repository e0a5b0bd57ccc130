// internal/model/contact.go
package model

type Contact struct {
	ID        int64  `db:"id" json:"id"`
	TenantID  int64  `db:"tenant_id" json:"tenant_id"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Company   string `db:"company" json:"company"`
	Title     string `db:"title" json:"title"`
	City      string `db:"city" json:"city"`
}
