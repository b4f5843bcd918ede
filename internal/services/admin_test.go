package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avgordeev/user-portal/internal/models"
)

// dobAged returns a birth date exactly one day past the given age at now,
// so the floored age is stable regardless of leap years.
func dobAged(now time.Time, years int) *time.Time {
	h := float64(years)*365.25*24 + 24
	t := now.Add(-time.Duration(h * float64(time.Hour)))
	return &t
}

func TestAgeBucket(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		age    int
		bucket string
		ok     bool
	}{
		{9, "", false},
		{10, "10-17", true},
		{17, "10-17", true},
		{18, "18-25", true},
		{25, "18-25", true},
		{26, "26-35", true},
		{35, "26-35", true},
		{36, "36-50", true},
		{50, "36-50", true},
		{51, "50+", true},
		{80, "50+", true},
	}

	for _, tt := range tests {
		bucket, ok := ageBucket(*dobAged(now, tt.age), now)
		assert.Equal(t, tt.ok, ok, "age %d", tt.age)
		assert.Equal(t, tt.bucket, bucket, "age %d", tt.age)
	}
}

func TestAgeHistogram(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	users := []models.User{
		{DOB: dobAged(now, 16)},
		{DOB: dobAged(now, 17)},
		{DOB: dobAged(now, 30)},
		{DOB: dobAged(now, 9)}, // below the youngest bucket
		{DOB: nil},             // never provided a birth date
	}

	groups := ageHistogram(users, now)

	assert.Equal(t, map[string]int{
		"10-17": 2,
		"18-25": 0,
		"26-35": 1,
		"36-50": 0,
		"50+":   0,
	}, groups)
}

func TestAdminService_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	filter := models.ListFilter{Name: "ali"}

	users := []models.User{
		{FullName: "Alice", DOB: dobAged(now, 30)},
		{FullName: "Alina", DOB: dobAged(now, 20)},
	}
	genders := []models.GenderCount{{Gender: "Female", Count: 2}}
	months := []models.MonthCount{{Month: "2026-08", Count: 2}}

	mockReader := NewMockReportReader(ctrl)
	mockReader.EXPECT().List(gomock.Any(), filter).Return(users, nil)
	mockReader.EXPECT().Count(gomock.Any()).Return(int64(7), nil)
	mockReader.EXPECT().CountByGender(gomock.Any()).Return(genders, nil)
	mockReader.EXPECT().CountByMonth(gomock.Any()).Return(months, nil)

	svc := NewAdminService(mockReader, NewMockReportWriter(ctrl), NewMockAuditor(ctrl))
	svc.now = func() time.Time { return now }

	data, err := svc.Dashboard(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, users, data.Users)
	assert.Equal(t, int64(7), data.TotalUsers)
	assert.Equal(t, genders, data.GenderCounts)
	assert.Equal(t, months, data.MonthlyCounts)
	assert.Equal(t, 1, data.AgeGroups["26-35"])
	assert.Equal(t, 1, data.AgeGroups["18-25"])
}

func TestAdminService_Dashboard_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("db error")
	mockReader := NewMockReportReader(ctrl)
	mockReader.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, dbErr)

	svc := NewAdminService(mockReader, NewMockReportWriter(ctrl), NewMockAuditor(ctrl))

	data, err := svc.Dashboard(context.Background(), models.ListFilter{})
	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, data)
}

func TestAdminService_ExportCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	phone := "12345"
	address := "Main St 1"
	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	users := []models.User{
		{
			FullName:  "Alice",
			Email:     "alice@example.com",
			Phone:     &phone,
			Gender:    models.GenderFemale,
			DOB:       &dob,
			Address:   &address,
			CreatedAt: created,
		},
		{
			FullName:  "Bob",
			Email:     "bob@example.com",
			Gender:    models.GenderMale,
			CreatedAt: created,
		},
	}

	mockReader := NewMockReportReader(ctrl)
	mockReader.EXPECT().List(gomock.Any(), models.ListFilter{}).Return(users, nil)

	svc := NewAdminService(mockReader, NewMockReportWriter(ctrl), NewMockAuditor(ctrl))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"fullName", "email", "phone", "gender", "dob", "address", "createdAt"}, records[0])
	assert.Equal(t, []string{"Alice", "alice@example.com", "12345", "Female", "1990-05-01", "Main St 1", "2026-01-02T03:04:05Z"}, records[1])
	assert.Equal(t, []string{"Bob", "bob@example.com", "", "Male", "", "", "2026-01-02T03:04:05Z"}, records[2])
}

func TestAdminService_ExportPDF(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := []models.User{
		{FullName: "Alice", Email: "alice@example.com", Gender: models.GenderFemale},
	}

	mockReader := NewMockReportReader(ctrl)
	mockReader.EXPECT().List(gomock.Any(), models.ListFilter{}).Return(users, nil)

	svc := NewAdminService(mockReader, NewMockReportWriter(ctrl), NewMockAuditor(ctrl))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportPDF(context.Background(), &buf))

	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))
}

func TestAdminService_GetUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	mockReader := NewMockReportReader(ctrl)
	mockReader.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	svc := NewAdminService(mockReader, NewMockReportWriter(ctrl), NewMockAuditor(ctrl))

	user, err := svc.GetUser(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, user)
}

func TestAdminService_DeleteUser(t *testing.T) {
	id := uuid.New()
	dbErr := errors.New("db error")

	tests := []struct {
		name      string
		affected  int64
		deleteErr error
		wantAudit bool
		wantErr   error
	}{
		{"deleted", 1, nil, true, nil},
		{"missing record", 0, nil, false, ErrNotFound},
		{"writer error", 0, dbErr, false, dbErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockWriter := NewMockReportWriter(ctrl)
			mockWriter.EXPECT().Delete(gomock.Any(), id).Return(tt.affected, tt.deleteErr)

			mockAudit := NewMockAuditor(ctrl)
			if tt.wantAudit {
				mockAudit.EXPECT().Publish(gomock.Any(), AuditUserDeleted, id.String())
			}

			svc := NewAdminService(NewMockReportReader(ctrl), mockWriter, mockAudit)

			err := svc.DeleteUser(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
