package model

import "time"

// Attendance is one recorded check-in. The (session_id, external_id) pair is
// unique; the database constraint is what enforces this under concurrency.
// Identity is self-asserted by the registrant; the fingerprint and origin tag
// are best-effort anti-duplication signals only.
type Attendance struct {
	ID                string    `db:"id" json:"id"`
	SessionID         string    `db:"session_id" json:"sessionId"`
	StudentName       string    `db:"student_name" json:"studentName"`
	ExternalID        string    `db:"external_id" json:"externalId"`
	DeviceFingerprint string    `db:"device_fingerprint" json:"deviceFingerprint"`
	OriginTag         string    `db:"origin_tag" json:"originTag"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

type CreateAttendanceParams struct {
	ID                string
	SessionID         string
	StudentName       string
	ExternalID        string
	DeviceFingerprint string
	OriginTag         string
}
