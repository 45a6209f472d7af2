package model

import "time"

type InstructorRole string

const (
	RoleInstructor InstructorRole = "instructor"
)

// Instructor is an API caller allowed to manage class sessions. The role is
// an explicit capability attribute checked per operation, not an ambient
// lookup against a full auth stack.
type Instructor struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	APIKeyHash      string         `db:"api_key_hash" json:"-"`
	Role            InstructorRole `db:"role" json:"role"`
	RateLimitPerMin int            `db:"rate_limit_per_min" json:"rateLimitPerMin"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	DisabledAt      *time.Time     `db:"disabled_at" json:"disabledAt,omitempty"`
}

type CreateInstructorParams struct {
	ID              string
	Name            string
	APIKeyHash      string
	Role            InstructorRole
	RateLimitPerMin int
}
