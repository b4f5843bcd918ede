package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
)

// ProfileReader defines lookups the self-service flow needs.
type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProfileWriter defines the two write paths of the self-service flow.
// Update can never touch the password column; only UpdatePassword can.
type ProfileWriter interface {
	Update(ctx context.Context, id uuid.UUID, patch models.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

// ProfileService handles the authenticated user's own record.
type ProfileService struct {
	reader ProfileReader
	writer ProfileWriter
	cost   int
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(reader ProfileReader, writer ProfileWriter, cost int) *ProfileService {
	return &ProfileService{
		reader: reader,
		writer: writer,
		cost:   cost,
	}
}

// Get returns the full record for the session's user id.
func (svc *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get profile", "id", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Update unconditionally overwrites the profile fields. Role, email and
// password are untouched.
func (svc *ProfileService) Update(ctx context.Context, id uuid.UUID, patch models.ProfileUpdate) error {
	if patch.Gender == "" {
		patch.Gender = models.GenderOther
	}
	if err := svc.writer.Update(ctx, id, patch); err != nil {
		logger.Log.Errorw("failed to update profile", "id", id, "err", err)
		return err
	}
	return nil
}

// ChangePassword replaces the password after the current one verifies and
// the confirmation matches. The new password is hashed exactly once.
func (svc *ProfileService) ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword, confirm string) error {
	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user for password change", "id", id, "err", err)
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if !VerifyPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	hash, err := HashPassword(newPassword, svc.cost)
	if err != nil {
		logger.Log.Errorw("failed to hash new password", "err", err)
		return err
	}

	if err := svc.writer.UpdatePassword(ctx, id, hash); err != nil {
		logger.Log.Errorw("failed to update password", "id", id, "err", err)
		return err
	}

	return nil
}
