package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
)

// AgeBucketOrder is the display order of the age histogram.
var AgeBucketOrder = []string{"10-17", "18-25", "26-35", "36-50", "50+"}

// csvHeader is the fixed export column order.
var csvHeader = []string{"fullName", "email", "phone", "gender", "dob", "address", "createdAt"}

// ReportReader defines the read operations the admin pipeline needs.
type ReportReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountByGender(ctx context.Context) ([]models.GenderCount, error)
	CountByMonth(ctx context.Context) ([]models.MonthCount, error)
}

// ReportWriter defines the write operations the admin pipeline needs.
type ReportWriter interface {
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// DashboardData is the read-only composite the dashboard renders.
type DashboardData struct {
	Users         []models.User
	TotalUsers    int64
	GenderCounts  []models.GenderCount
	MonthlyCounts []models.MonthCount
	AgeGroups     map[string]int
}

// AdminService implements the admin reporting pipeline.
type AdminService struct {
	reader ReportReader
	writer ReportWriter
	audit  Auditor
	now    func() time.Time
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(reader ReportReader, writer ReportWriter, audit Auditor) *AdminService {
	return &AdminService{
		reader: reader,
		writer: writer,
		audit:  audit,
		now:    time.Now,
	}
}

// Dashboard returns the filtered user list plus the aggregate report data.
// No side effects.
func (svc *AdminService) Dashboard(ctx context.Context, filter models.ListFilter) (*DashboardData, error) {
	users, err := svc.reader.List(ctx, filter)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}

	total, err := svc.reader.Count(ctx)
	if err != nil {
		logger.Log.Errorw("failed to count users", "err", err)
		return nil, err
	}

	genders, err := svc.reader.CountByGender(ctx)
	if err != nil {
		logger.Log.Errorw("failed to aggregate users by gender", "err", err)
		return nil, err
	}

	months, err := svc.reader.CountByMonth(ctx)
	if err != nil {
		logger.Log.Errorw("failed to aggregate users by month", "err", err)
		return nil, err
	}

	return &DashboardData{
		Users:         users,
		TotalUsers:    total,
		GenderCounts:  genders,
		MonthlyCounts: months,
		AgeGroups:     ageHistogram(users, svc.now()),
	}, nil
}

// ageHistogram buckets the listed users by age derived from dob.
// Users younger than 10 or without a dob fall into no bucket.
func ageHistogram(users []models.User, now time.Time) map[string]int {
	groups := make(map[string]int, len(AgeBucketOrder))
	for _, b := range AgeBucketOrder {
		groups[b] = 0
	}
	for _, u := range users {
		if u.DOB == nil {
			continue
		}
		if bucket, ok := ageBucket(*u.DOB, now); ok {
			groups[bucket]++
		}
	}
	return groups
}

// ageBucket places a birth date into its age range, first match winning.
func ageBucket(dob, now time.Time) (string, bool) {
	age := int(math.Floor(now.Sub(dob).Hours() / (24 * 365.25)))
	if age < 10 {
		return "", false
	}
	switch {
	case age <= 17:
		return "10-17", true
	case age <= 25:
		return "18-25", true
	case age <= 35:
		return "26-35", true
	case age <= 50:
		return "36-50", true
	default:
		return "50+", true
	}
}

// ExportCSV writes all role=user records as CSV with the fixed column order
// fullName,email,phone,gender,dob,address,createdAt.
func (svc *AdminService) ExportCSV(ctx context.Context, w io.Writer) error {
	users, err := svc.reader.List(ctx, models.ListFilter{})
	if err != nil {
		logger.Log.Errorw("failed to list users for csv export", "err", err)
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, u := range users {
		row := []string{
			u.FullName,
			u.Email,
			deref(u.Phone),
			string(u.Gender),
			formatDOB(u.DOB, ""),
			deref(u.Address),
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportPDF writes all role=user records as a paginated PDF report,
// one line per user, 1-indexed.
func (svc *AdminService) ExportPDF(ctx context.Context, w io.Writer) error {
	users, err := svc.reader.List(ctx, models.ListFilter{})
	if err != nil {
		logger.Log.Errorw("failed to list users for pdf export", "err", err)
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Users Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	for i, u := range users {
		line := fmt.Sprintf("%d. %s | %s | %s | %s | DOB: %s",
			i+1,
			u.FullName,
			u.Email,
			orDash(deref(u.Phone)),
			orDash(string(u.Gender)),
			formatDOB(u.DOB, "-"),
		)
		pdf.MultiCell(0, 5, line, "", "L", false)
		pdf.Ln(1)
	}

	return pdf.Output(w)
}

// GetUser returns a single record for the admin detail view.
func (svc *AdminService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user", "id", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// DeleteUser permanently removes a record. A miss is ErrNotFound; the
// handler degrades every failure to a generic flash message.
func (svc *AdminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	affected, err := svc.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "id", id, "err", err)
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	svc.audit.Publish(ctx, AuditUserDeleted, id.String())
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDOB(dob *time.Time, empty string) string {
	if dob == nil {
		return empty
	}
	return dob.Format("2006-01-02")
}
