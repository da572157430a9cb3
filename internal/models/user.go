package models

import "time"

// AccountStatus tracks whether a user may sign in.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusInactive  AccountStatus = "inactive"
	StatusSuspended AccountStatus = "suspended"
	StatusLocked    AccountStatus = "locked"
)

// MaxFailedLogins is the number of consecutive bad passwords that locks an account.
const MaxFailedLogins = 5

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID                  int64         `json:"id"`
	Email               string        `json:"email"`
	FullName            string        `json:"full_name"`
	Phone               string        `json:"phone_number,omitempty"`
	Role                Role          `json:"role"`
	SubRole             string        `json:"sub_role,omitempty"`
	Permissions         []string      `json:"permissions,omitempty"`
	InvestorID          string        `json:"investor_id,omitempty"`
	AMCID               string        `json:"amc_id,omitempty"`
	DistributorID       string        `json:"distributor_id,omitempty"`
	EmployeeID          string        `json:"employee_id,omitempty"`
	Status              AccountStatus `json:"status"`
	FailedLoginAttempts int           `json:"-"`
	LastLogin           *time.Time    `json:"last_login,omitempty"`
	PasswordHash        string        `json:"-"`
	CreatedAt           time.Time     `json:"created_at"`
}

// Active reports whether the account is allowed to hold a session.
func (u User) Active() bool {
	return u.Status == StatusActive || u.Status == ""
}

// Locked reports whether the account is locked out.
func (u User) Locked() bool {
	return u.Status == StatusLocked
}
