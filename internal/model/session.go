package model

import "time"

// Session is a time-boxed, tokenized invitation for check-ins, owned by
// one instructor. At most one session per owner is active at a time; the
// token is the external capability handed to students.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Token     string    `db:"token" json:"token"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Attendees is populated on read paths that nest the roster.
	Attendees []Attendance `db:"-" json:"attendees,omitempty"`
}

// Expired reports whether the session no longer accepts check-ins based on
// time alone. The stored is_active flag may lag behind this.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type CreateSessionParams struct {
	ID        string
	Token     string
	OwnerID   string
	ExpiresAt time.Time
}
