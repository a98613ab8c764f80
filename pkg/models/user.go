package models

import (
	"time"
)

// DefaultCreditBalance is granted to every new account and used to repair
// legacy rows whose balance was never set.
const DefaultCreditBalance = 20

// User represents a registered account. CreditBalance is a pointer because
// rows created before the balance column was backfilled can hold NULL; the
// account and generator services repair such rows to DefaultCreditBalance
// before any read returns.
type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	CreditBalance *int      `json:"credit_balance,omitempty" db:"credit_balance"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Credits returns the balance, treating an unset balance as zero. Callers
// that need the repair semantics must resolve the user through a service
// first.
func (u *User) Credits() int {
	if u.CreditBalance == nil {
		return 0
	}
	return *u.CreditBalance
}

// UserView is the public shape returned to clients. It never carries the
// password hash.
type UserView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Credits int    `json:"credits"`
}

// View builds the client-facing projection of the user.
func (u *User) View() UserView {
	return UserView{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Credits: u.Credits(),
	}
}
