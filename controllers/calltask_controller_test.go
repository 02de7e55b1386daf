package controller

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCallTaskApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	cc := NewCallTaskController(db, testLogger())

	app := fiber.New()
	app.Post("/api/suspect/:id/call-task", cc.RecordCallTask)
	return app, mock
}

func TestRecordCallTaskRejectsTerminalNegativeWithoutRemarks(t *testing.T) {
	app, mock := newCallTaskApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/5/call-task", map[string]interface{}{
		"task_date":   "2024-06-01",
		"task_status": "Not Interested",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["details"], "requires remarks")

	// Nothing may reach the database on a rejected task.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCallTaskRejectsCallbackWithoutNextSlot(t *testing.T) {
	app, mock := newCallTaskApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/5/call-task", map[string]interface{}{
		"task_date":   "2024-06-01",
		"task_status": "Callback",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCallTaskRejectsUnknownStatus(t *testing.T) {
	app, mock := newCallTaskApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/5/call-task", map[string]interface{}{
		"task_date":   "2024-06-01",
		"task_status": "Ghosted",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCallTaskAppointmentConvertsSuspect(t *testing.T) {
	app, mock := newCallTaskApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(5, "suspect"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "call_tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "suspects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/5/call-task", map[string]interface{}{
		"task_date":             "2024-05-20",
		"task_time":             "09:45",
		"task_status":           "Appointment Scheduled",
		"next_appointment_date": "2024-06-01",
		"next_appointment_time": "10:00",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["status_changed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCallTaskNeutralStatusDoesNotConvert(t *testing.T) {
	app, mock := newCallTaskApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(5, "suspect"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "call_tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/5/call-task", map[string]interface{}{
		"task_date":   "2024-05-21",
		"task_status": "Not Contacted",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["status_changed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCallTaskAppointmentOnProspectKeepsStatus(t *testing.T) {
	app, mock := newCallTaskApp(t)

	// Already a prospect: the task is appended but no conversion runs.
	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(8, "prospect"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "call_tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/8/call-task", map[string]interface{}{
		"task_date":             "2024-05-22",
		"task_status":           "Appointment Scheduled",
		"next_appointment_date": "2024-06-02",
		"next_appointment_time": "15:00",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["status_changed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCallTaskSuspectNotFound(t *testing.T) {
	app, mock := newCallTaskApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/404/call-task", map[string]interface{}{
		"task_date":   "2024-05-22",
		"task_status": "Not Contacted",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
