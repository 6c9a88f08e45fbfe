package models

import "time"

// AccountRole represents the role attached to an account.
type AccountRole string

const (
	RoleStudent   AccountRole = "STUDENT"
	RoleProfessor AccountRole = "PROFESSOR"
	RoleAdmin     AccountRole = "ADMIN"
)

// Valid reports whether the role is recognised.
func (r AccountRole) Valid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return true
	}
	return false
}

// Account is an application user referenced by the substitution workflow.
// Only the role field is mutated here, and only by promote/revert.
type Account struct {
	ID        string      `db:"id" json:"id"`
	Username  string      `db:"username" json:"username"`
	FullName  string      `db:"full_name" json:"full_name"`
	Role      AccountRole `db:"role" json:"role"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// AccountFilter captures filtering criteria for listing accounts.
type AccountFilter struct {
	Role      *AccountRole
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
