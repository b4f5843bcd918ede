package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
)

const userColumns = "user_id, full_name, email, password_hash, phone, gender, dob, address, role, created_at"

// UserReadRepository provides read-only access to user records.
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns the user with the given id, or nil if no such user exists.
func (r *UserReadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)

	logger.Log.Debugw("get user by id",
		"query", strings.Join(strings.Fields(query), " "),
		"id", id,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail returns the user with the given email, matched
// case-insensitively, or nil if no such user exists.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)

	logger.Log.Debugw("get user by email",
		"query", strings.Join(strings.Fields(query), " "),
		"email", email,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns role=user records matching the filter, most recent first.
// Absent filter fields add no constraint.
func (r *UserReadRepository) List(ctx context.Context, filter models.ListFilter) ([]models.User, error) {
	qb := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(strings.Split(userColumns, ", ")...).
		From("users").
		Where(sq.Eq{"role": models.RoleUser}).
		OrderBy("created_at DESC")

	if filter.Name != "" {
		qb = qb.Where(sq.ILike{"full_name": "%" + filter.Name + "%"})
	}
	if filter.Gender != "" {
		qb = qb.Where(sq.Eq{"gender": filter.Gender})
	}
	if filter.From != nil {
		qb = qb.Where(sq.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		qb = qb.Where(sq.LtOrEq{"created_at": *filter.To})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}

	users := []models.User{}
	err = r.db.SelectContext(ctx, &users, query, args...)

	logger.Log.Debugw("list users",
		"query", query,
		"args", args,
		"count", len(users),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return users, nil
}

// Count returns the total number of role=user records.
func (r *UserReadRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1`

	var count int64
	err := r.db.GetContext(ctx, &count, query, models.RoleUser)

	logger.Log.Debugw("count users", "query", query, "count", count, "error", err)

	if err != nil {
		return 0, err
	}

	return count, nil
}

// CountByGender returns (gender, count) pairs for role=user records.
// The order of the pairs is unspecified.
func (r *UserReadRepository) CountByGender(ctx context.Context) ([]models.GenderCount, error) {
	const query = `
		SELECT gender, COUNT(*) AS count
		FROM users
		WHERE role = $1
		GROUP BY gender
	`

	counts := []models.GenderCount{}
	err := r.db.SelectContext(ctx, &counts, query, models.RoleUser)

	logger.Log.Debugw("count users by gender",
		"query", strings.Join(strings.Fields(query), " "),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return counts, nil
}

// CountByMonth returns (YYYY-MM, count) pairs for role=user records,
// ordered chronologically.
func (r *UserReadRepository) CountByMonth(ctx context.Context) ([]models.MonthCount, error) {
	const query = `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*) AS count
		FROM users
		WHERE role = $1
		GROUP BY 1
		ORDER BY 1
	`

	counts := []models.MonthCount{}
	err := r.db.SelectContext(ctx, &counts, query, models.RoleUser)

	logger.Log.Debugw("count users by month",
		"query", strings.Join(strings.Fields(query), " "),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return counts, nil
}

// UserWriteRepository provides write access to user records.
type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Create inserts a new user record. A unique-index violation on the email
// column is reported as ErrDuplicateEmail.
func (r *UserWriteRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (user_id, full_name, email, password_hash, phone, gender, dob, address, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	args := []any{
		user.UserID, user.FullName, user.Email, user.PasswordHash,
		user.Phone, user.Gender, user.DOB, user.Address, user.Role, user.CreatedAt,
	}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Debugw("create user",
		"query", strings.Join(strings.Fields(query), " "),
		"email", user.Email,
		"error", err,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateEmail
	}

	return err
}

// Update overwrites the profile fields of a record. Email, role, password
// and created_at are never touched here; password replacement goes through
// UpdatePassword so unrelated field updates can never re-hash.
func (r *UserWriteRepository) Update(ctx context.Context, id uuid.UUID, patch models.ProfileUpdate) error {
	const query = `
		UPDATE users
		SET full_name = $2, phone = $3, gender = $4, dob = $5, address = $6
		WHERE user_id = $1
	`
	args := []any{id, patch.FullName, patch.Phone, patch.Gender, patch.DOB, patch.Address}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Debugw("update user",
		"query", strings.Join(strings.Fields(query), " "),
		"id", id,
		"error", err,
	)

	return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserWriteRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	const query = `UPDATE users SET password_hash = $2 WHERE user_id = $1`

	_, err := r.db.ExecContext(ctx, query, id, hash)

	logger.Log.Debugw("update user password", "query", query, "id", id, "error", err)

	return err
}

// Delete permanently removes a record and returns the number of rows removed.
func (r *UserWriteRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	const query = `DELETE FROM users WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, id)

	var affected int64
	if res != nil {
		affected, _ = res.RowsAffected()
	}

	logger.Log.Debugw("delete user", "query", query, "id", id, "affected", affected, "error", err)

	return affected, err
}
