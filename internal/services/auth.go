package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/repositories"
)

// emailRe is the same local@domain shape check the original form used.
var emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) error
}

// RegisterInput carries the registration form fields. Optional fields are
// nil when the form left them blank.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    *string
	Gender   models.Gender
	DOB      *time.Time
	Address  *string
}

// AuthService handles registration and login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	audit  Auditor
	cost   int
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, audit Auditor, cost int) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		audit:  audit,
		cost:   cost,
	}
}

// Register validates the input and creates a role=user account.
// The password is hashed exactly once, here.
func (svc *AuthService) Register(ctx context.Context, in RegisterInput) error {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)

	if fullName == "" || email == "" || in.Password == "" {
		return ErrMissingFields
	}
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	if !isStrongPassword(in.Password) {
		return ErrWeakPassword
	}

	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := HashPassword(in.Password, svc.cost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	gender := in.Gender
	if gender == "" {
		gender = models.GenderOther
	}

	user := &models.User{
		UserID:       uuid.New(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Gender:       gender,
		DOB:          in.DOB,
		Address:      in.Address,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := svc.writer.Create(ctx, user); err != nil {
		// The unique index closes the race the pre-check above leaves open.
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	svc.audit.Publish(ctx, AuditUserRegistered, email)
	return nil
}

// Login authenticates a user by email and password and returns the record
// for session establishment. Unknown email and wrong password produce the
// same ErrInvalidCredentials.
func (svc *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := svc.reader.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
