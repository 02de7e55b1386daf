package controller

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuspectApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	sc := NewSuspectController(db, testLogger())

	app := fiber.New()
	app.Post("/api/suspect/create", sc.CreateSuspect)
	app.Get("/api/suspect/:id", sc.GetSuspect)
	app.Put("/api/suspect/update/status/:id", sc.UpdateStatus)
	return app, mock
}

func TestCreateSuspectRequiresGroupNameAndMobile(t *testing.T) {
	app, mock := newSuspectApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/create", map[string]interface{}{
		"group_name": "Sharma Family",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["details"], "mobileno is required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSuspectRejectsBadEmail(t *testing.T) {
	app, mock := newSuspectApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/create", map[string]interface{}{
		"group_name": "Sharma Family",
		"mobile_no":  "9876543210",
		"email":      "not-an-email",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSuspectDerivesGradeAndDefaults(t *testing.T) {
	app, mock := newSuspectApp(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/suspect/create", map[string]interface{}{
		"group_name":    "Sharma Family",
		"mobile_no":     "9876543210",
		"annual_income": 1200000,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "suspect", data["status"])

	details := data["personal_details"].(map[string]interface{})
	assert.Equal(t, "A", details["grade"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSuspectNotFound(t *testing.T) {
	app, mock := newSuspectApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	resp, err := app.Test(jsonRequest(t, "GET", "/api/suspect/404", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsReversal(t *testing.T) {
	app, mock := newSuspectApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, "client"))

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/suspect/update/status/3", map[string]interface{}{
		"status": "suspect",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "Invalid status transition")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsSkippingAStage(t *testing.T) {
	app, mock := newSuspectApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, "suspect"))

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/suspect/update/status/3", map[string]interface{}{
		"status": "client",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusForwardTransition(t *testing.T) {
	app, mock := newSuspectApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, "prospect"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "suspects" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/suspect/update/status/3", map[string]interface{}{
		"status": "client",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSuspectRemovesAggregate(t *testing.T) {
	db, mock := newMockDB(t)
	sc := NewSuspectController(db, testLogger())

	app := fiber.New()
	app.Delete("/api/suspect/delete/:id", sc.DeleteSuspect)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectBegin()
	// One hard delete per child table, then the root row.
	for _, table := range []string{
		"family_members", "insurance_policies", "investments", "loans",
		"future_priorities", "need_answers", "proposed_plans",
		"call_tasks", "suspect_assignments",
	} {
		mock.ExpectExec(`DELETE FROM "` + table + `"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(`DELETE FROM "suspects"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := app.Test(jsonRequest(t, "DELETE", "/api/suspect/delete/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSuspectNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	sc := NewSuspectController(db, testLogger())

	app := fiber.New()
	app.Delete("/api/suspect/delete/:id", sc.DeleteSuspect)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, err := app.Test(jsonRequest(t, "DELETE", "/api/suspect/delete/404", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	app, mock := newSuspectApp(t)

	mock.ExpectQuery(`SELECT (.+) FROM "suspects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, "prospect"))

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/suspect/update/status/3", map[string]interface{}{
		"status": "prospect",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	// No write expected.
	assert.NoError(t, mock.ExpectationsWereMet())
}
