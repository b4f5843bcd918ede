package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avgordeev/user-portal/internal/models"
)

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want models.Gender
	}{
		{"Male", models.GenderMale},
		{"Female", models.GenderFemale},
		{"Other", models.GenderOther},
		{"", models.GenderOther},
		{"male", models.GenderOther}, // case sensitive on purpose
		{"nonsense", models.GenderOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, models.ParseGender(tt.in), "input %q", tt.in)
	}
}

func TestIdentityOf(t *testing.T) {
	user := &models.User{
		UserID:       uuid.New(),
		FullName:     "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
	}

	identity := models.IdentityOf(user)

	assert.Equal(t, user.UserID, identity.UserID)
	assert.Equal(t, "Alice", identity.FullName)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, models.RoleAdmin, identity.Role)
}
