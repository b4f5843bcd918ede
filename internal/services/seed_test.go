package services_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/repositories"
	"github.com/avgordeev/user-portal/internal/services"
)

func TestSeedService_EnsureAdmin_Creates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockReader.EXPECT().GetByEmail(gomock.Any(), "admin@example.com").Return(nil, nil)

	var saved *models.User
	mockWriter := services.NewMockUserWriter(ctrl)
	mockWriter.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	svc := services.NewSeedService(mockReader, mockWriter, bcrypt.MinCost)

	created, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "Admin@123")
	require.NoError(t, err)
	assert.True(t, created)

	require.NotNil(t, saved)
	assert.Equal(t, models.RoleAdmin, saved.Role)
	assert.Equal(t, "Admin", saved.FullName)
	assert.True(t, services.VerifyPassword(saved.PasswordHash, "Admin@123"))
}

func TestSeedService_EnsureAdmin_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockReader.EXPECT().
		GetByEmail(gomock.Any(), "admin@example.com").
		Return(&models.User{Email: "admin@example.com", Role: models.RoleAdmin}, nil)

	svc := services.NewSeedService(mockReader, services.NewMockUserWriter(ctrl), bcrypt.MinCost)

	created, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "Admin@123")
	assert.NoError(t, err)
	assert.False(t, created)
}

func TestSeedService_EnsureAdmin_ConcurrentSeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockReader.EXPECT().GetByEmail(gomock.Any(), "admin@example.com").Return(nil, nil)

	mockWriter := services.NewMockUserWriter(ctrl)
	mockWriter.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repositories.ErrDuplicateEmail)

	svc := services.NewSeedService(mockReader, mockWriter, bcrypt.MinCost)

	created, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "Admin@123")
	assert.NoError(t, err)
	assert.False(t, created)
}
