package models

import "time"

// Admin is a back-office account stored in the admins table. The first admin
// registered becomes super admin; only super admins may create more.
type Admin struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	IsSuperAdmin bool       `db:"is_super_admin" json:"is_super_admin"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
}
