package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockPatientHandler(t *testing.T) (*PatientHandler, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewPatientHandler(db), mock
}

func patientCreateRouter(h *PatientHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/patients", h.CreatePatient)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func noPatientRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"})
}

func TestCreatePatientRejectsDuplicateEmail(t *testing.T) {
	h, mock := newMockPatientHandler(t)

	// Phone scan finds nothing, email scan hits an existing row.
	mock.ExpectQuery("SELECT \\* FROM `patients`").
		WillReturnRows(noPatientRows())
	mock.ExpectQuery("SELECT \\* FROM `patients`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("pat-1"))

	w := postJSON(patientCreateRouter(h), "/patients",
		`{"firstName":"Sara","lastName":"Haddad","phone":"0790000001","email":"sara@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "a patient with this email already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePatientRejectsDuplicatePhone(t *testing.T) {
	h, mock := newMockPatientHandler(t)

	mock.ExpectQuery("SELECT \\* FROM `patients`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("pat-1"))

	w := postJSON(patientCreateRouter(h), "/patients",
		`{"firstName":"Sara","lastName":"Haddad","phone":"0790000001"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "a patient with this phone number already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePatientWithoutEmailSkipsEmailScan(t *testing.T) {
	h, mock := newMockPatientHandler(t)

	// Only the phone scan runs; the insert follows immediately.
	mock.ExpectQuery("SELECT \\* FROM `patients`").
		WillReturnRows(noPatientRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `patients`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := postJSON(patientCreateRouter(h), "/patients",
		`{"firstName":"Sara","lastName":"Haddad","phone":"0790000001"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailOrNil(t *testing.T) {
	assert.Nil(t, emailOrNil(""))
	require.NotNil(t, emailOrNil("sara@example.com"))
	assert.Equal(t, "sara@example.com", *emailOrNil("sara@example.com"))
}
