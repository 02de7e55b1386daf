package controller

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vpcrm/models"
)

func newAssignApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	tc := NewTelecallerController(db, testLogger(), nil)

	app := fiber.New()
	withEmployee(app, &models.Employee{
		Model: gorm.Model{ID: 1},
		Name:  "Admin",
		Role:  models.RoleAdmin,
	})
	app.Post("/api/telecaller/assign-suspects", tc.AssignSuspects)
	return app, mock
}

func employeeRows(id uint, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "name", "role", "is_active"}).
		AddRow(id, "asha@vpcrm.local", "Asha", role, true)
}

func TestAssignSuspectsRejectsAlreadyAssigned(t *testing.T) {
	app, mock := newAssignApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "employees"`).
		WillReturnRows(employeeRows(9, models.RoleTelecaller))
	mock.ExpectBegin()
	// Guarded update matches nothing: the suspect already has an owner.
	mock.ExpectExec(`UPDATE "suspects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/telecaller/assign-suspects", map[string]interface{}{
		"role":        "telecaller",
		"employee_id": 9,
		"suspect_ids": []uint{42},
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignSuspectsAllOrNothing(t *testing.T) {
	app, mock := newAssignApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "employees"`).
		WillReturnRows(employeeRows(9, models.RoleTelecaller))
	mock.ExpectBegin()
	// First id assigns fine, second is taken: everything rolls back.
	mock.ExpectExec(`UPDATE "suspects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "suspect_assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "suspects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/telecaller/assign-suspects", map[string]interface{}{
		"role":        "telecaller",
		"employee_id": 9,
		"suspect_ids": []uint{41, 42},
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignSuspectsSuccess(t *testing.T) {
	app, mock := newAssignApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "employees"`).
		WillReturnRows(employeeRows(9, models.RoleTelecaller))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "suspects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "suspect_assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/telecaller/assign-suspects", map[string]interface{}{
		"role":        "telecaller",
		"employee_id": 9,
		"suspect_ids": []uint{41},
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignSuspectsRoleMismatch(t *testing.T) {
	app, mock := newAssignApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "employees"`).
		WillReturnRows(employeeRows(9, models.RoleHR))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/telecaller/assign-suspects", map[string]interface{}{
		"role":        "telecaller",
		"employee_id": 9,
		"suspect_ids": []uint{41},
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func assignedAt(s string) models.SuspectAssignment {
	d, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return models.SuspectAssignment{AssignedAt: d}
}

func TestBucketAssignments(t *testing.T) {
	// Fixed "now": Wednesday 2024-06-12 14:00 local.
	now := time.Date(2024, 6, 12, 14, 0, 0, 0, time.Local)

	assignments := []models.SuspectAssignment{
		assignedAt("2024-06-12 09:00"), // today
		assignedAt("2024-06-10 17:30"), // Monday, same week
		assignedAt("2024-06-02 10:00"), // this month, previous week
		assignedAt("2024-04-20 10:00"), // two months back
		assignedAt("2023-12-01 10:00"), // outside the six-month window
	}

	stats := BucketAssignments(assignments, now)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Today)
	assert.Equal(t, 2, stats.ThisWeek)
	assert.Equal(t, 3, stats.ThisMonth)

	require.Len(t, stats.LastSixMonths, 6)
	assert.Equal(t, "2024-01", stats.LastSixMonths[0].Month)
	assert.Equal(t, "2024-06", stats.LastSixMonths[5].Month)
	assert.Equal(t, 0, stats.LastSixMonths[0].Count)

	byMonth := map[string]int{}
	for _, m := range stats.LastSixMonths {
		byMonth[m.Month] = m.Count
	}
	assert.Equal(t, 1, byMonth["2024-04"])
	assert.Equal(t, 3, byMonth["2024-06"])
	assert.Equal(t, 0, byMonth["2023-12"]) // zero: not in the window at all
}

func TestBucketAssignmentsSundayBelongsToCurrentWeek(t *testing.T) {
	// Sunday 2024-06-16: the week started Monday 2024-06-10.
	now := time.Date(2024, 6, 16, 12, 0, 0, 0, time.Local)

	stats := BucketAssignments([]models.SuspectAssignment{
		assignedAt("2024-06-10 08:00"),
		assignedAt("2024-06-09 08:00"), // previous week
	}, now)

	assert.Equal(t, 1, stats.ThisWeek)
}
