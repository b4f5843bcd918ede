package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender of a user. Free-form input is normalized to one of these values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// ParseGender maps arbitrary input to a known gender, defaulting to Other.
func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s)
	default:
		return GenderOther
	}
}

// Role controls the authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user record in the database
type User struct {
	UserID       uuid.UUID  `db:"user_id"`       // Primary key, immutable
	FullName     string     `db:"full_name"`     // Required
	Email        string     `db:"email"`         // Unique, case-insensitive lookup key
	PasswordHash string     `db:"password_hash"` // bcrypt hash, never plaintext
	Phone        *string    `db:"phone"`
	Gender       Gender     `db:"gender"`
	DOB          *time.Time `db:"dob"`
	Address      *string    `db:"address"`
	Role         Role       `db:"role"`
	CreatedAt    time.Time  `db:"created_at"` // Immutable, set at creation
}

// ProfileUpdate is the set of fields a user may overwrite on their own record.
// Email, role and password are deliberately absent.
type ProfileUpdate struct {
	FullName string
	Phone    *string
	Gender   Gender
	DOB      *time.Time
	Address  *string
}

// ListFilter narrows the admin user listing. Zero values mean no constraint;
// all set constraints are ANDed.
type ListFilter struct {
	Name   string     // case-insensitive substring of full_name
	Gender Gender     // exact match
	From   *time.Time // created_at >= From
	To     *time.Time // created_at <= To
}

// GenderCount is one bucket of the gender histogram.
type GenderCount struct {
	Gender string `db:"gender"`
	Count  int64  `db:"count"`
}

// MonthCount is one bucket of the monthly registrations histogram.
// Month is a YYYY-MM key.
type MonthCount struct {
	Month string `db:"month"`
	Count int64  `db:"count"`
}
