package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/repositories"
)

// SeedService bootstraps the admin account from configuration.
type SeedService struct {
	reader UserReader
	writer UserWriter
	cost   int
}

// NewSeedService creates a new SeedService instance.
func NewSeedService(reader UserReader, writer UserWriter, cost int) *SeedService {
	return &SeedService{
		reader: reader,
		writer: writer,
		cost:   cost,
	}
}

// EnsureAdmin creates a role=admin account with the given credentials if no
// account with that email exists. It is idempotent: the second call is a
// no-op reporting created=false.
func (svc *SeedService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check admin exists", "err", err)
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hash, err := HashPassword(password, svc.cost)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		UserID:       uuid.New(),
		FullName:     name,
		Email:        email,
		PasswordHash: hash,
		Gender:       models.GenderOther,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	if err := svc.writer.Create(ctx, admin); err != nil {
		// Another process seeded concurrently; treat as already present.
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return false, nil
		}
		logger.Log.Errorw("failed to create admin", "err", err)
		return false, err
	}

	return true, nil
}
