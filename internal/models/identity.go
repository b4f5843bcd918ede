package models

import "github.com/google/uuid"

// Identity is the authenticated principal stored in the session once login
// succeeds. It carries everything views need without another lookup.
type Identity struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

// IdentityOf builds the session identity for a user record.
func IdentityOf(u *User) Identity {
	return Identity{
		UserID:   u.UserID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// AuditEvent is the message published to Kafka for account lifecycle changes.
type AuditEvent struct {
	EventID   string `json:"event_id"`
	Action    string `json:"action"`
	Subject   string `json:"subject"`
	Timestamp int64  `json:"timestamp"`
}
