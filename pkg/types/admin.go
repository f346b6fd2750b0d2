package types

import (
	"errors"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminUser is an operator account for the settings dashboard. The password
// is never stored, only its bcrypt hash.
type AdminUser struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
