package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/repositories"
)

// TempImportPassword is the fixed password imported accounts start with.
// It is a deployment placeholder, not a security practice: operators are
// expected to force a reset out of band.
const TempImportPassword = "ChangeMe@123"

// ErrEmptyCSV is returned when the uploaded file has no header row.
var ErrEmptyCSV = errors.New("csv file is empty")

// ImportResult is the aggregate outcome of one import batch.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportService streams an uploaded CSV into new role=user accounts.
type ImportService struct {
	reader UserReader
	writer UserWriter
	audit  Auditor
	cost   int
}

// NewImportService creates a new ImportService instance.
func NewImportService(reader UserReader, writer UserWriter, audit Auditor, cost int) *ImportService {
	return &ImportService{
		reader: reader,
		writer: writer,
		audit:  audit,
		cost:   cost,
	}
}

// ImportCSV processes the file at path row by row, in file order. Each row
// is checked against storage as of the moment it is processed, so a later
// row repeating an earlier row's email is skipped as a duplicate of the
// just-inserted record. The fold is deliberately sequential; that ordering
// guarantee is a correctness requirement.
//
// The temporary upload is removed on both success and failure paths.
// Per-row failures are logged and counted as skipped, never fatal.
func (svc *ImportService) ImportCSV(ctx context.Context, path string) (ImportResult, error) {
	defer func() {
		if err := os.Remove(path); err != nil {
			logger.Log.Warnw("failed to remove uploaded csv", "path", path, "err", err)
		}
	}()

	var result ImportResult

	f, err := os.Open(path)
	if err != nil {
		logger.Log.Errorw("failed to open uploaded csv", "path", path, "err", err)
		return result, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return result, ErrEmptyCSV
		}
		return result, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	// Same plaintext for every imported row, so hash once per batch.
	tempHash, err := HashPassword(TempImportPassword, svc.cost)
	if err != nil {
		return result, err
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Log.Warnw("skipping malformed csv row", "err", err)
			result.Skipped++
			continue
		}

		email := strings.ToLower(field(rec, "email"))
		if email == "" {
			logger.Log.Warnw("skipping csv row without email")
			result.Skipped++
			continue
		}

		existing, err := svc.reader.GetByEmail(ctx, email)
		if err != nil {
			logger.Log.Errorw("failed to look up csv row by email", "email", email, "err", err)
			result.Skipped++
			continue
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		user := &models.User{
			UserID:       uuid.New(),
			FullName:     field(rec, "fullname"),
			Email:        email,
			PasswordHash: tempHash,
			Phone:        optional(field(rec, "phone")),
			Gender:       models.ParseGender(field(rec, "gender")),
			DOB:          parseDOB(field(rec, "dob")),
			Address:      optional(field(rec, "address")),
			Role:         models.RoleUser,
			CreatedAt:    time.Now().UTC(),
		}

		if err := svc.writer.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateEmail) {
				result.Skipped++
				continue
			}
			logger.Log.Errorw("failed to insert csv row", "email", email, "err", err)
			result.Skipped++
			continue
		}

		result.Imported++
	}

	svc.audit.Publish(ctx, AuditImportCompleted,
		fmt.Sprintf("imported=%d skipped=%d", result.Imported, result.Skipped))

	return result, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseDOB(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
