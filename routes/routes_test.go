package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRouterTest(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	configuration.DB = db
	configuration.Logger = zap.NewNop()
	return mock, SetupRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAttendanceRouteCarriesDonorID(t *testing.T) {
	mock, r := setupRouterTest(t)

	token, err := authentication.GenerateToken(2, models.RoleHospital)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(sqlmock.NewRows([]string{"camp_id", "hospital_id", "status", "date"}).
			AddRow(5, 2, string(models.CampUpcoming), time.Now().Add(24*time.Hour)))
	mock.ExpectQuery(`SELECT \* FROM "interest_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "camp_id", "donor_id", "status"}).
			AddRow(11, 5, 9, string(models.AttendanceRegistered)))
	mock.ExpectExec(`UPDATE "interest_entries" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"history_id"}).AddRow(1))

	w := doJSON(t, r, http.MethodPatch, "/hospital/camps/5/attendance/9", token, `{"status":"no-show"}`)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"donor_id":9`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRouteNonNumericDonor(t *testing.T) {
	_, r := setupRouterTest(t)

	token, err := authentication.GenerateToken(2, models.RoleHospital)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPatch, "/hospital/camps/5/attendance/abc", token, `{"status":"attended"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid id")
}

func TestRespondRouteResolvesRequestID(t *testing.T) {
	mock, r := setupRouterTest(t)

	token, err := authentication.GenerateToken(9, models.RoleDonor)
	require.NoError(t, err)

	// the id must make it to the lookup, not die in param parsing
	mock.ExpectQuery(`SELECT \* FROM "blood_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"request_id"}))

	w := doJSON(t, r, http.MethodPost, "/donor/blood-requests/7/respond", token, `{"response":"accepted"}`)

	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Blood request not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRouteResolvesRequestID(t *testing.T) {
	mock, r := setupRouterTest(t)

	token, err := authentication.GenerateToken(2, models.RoleHospital)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "blood_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "hospital_id", "status"}).
			AddRow(7, 99, string(models.RequestAccepted)))

	w := doJSON(t, r, http.MethodPost, "/hospital/blood-requests/7/complete", token, "")

	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Not authorized to update this blood request")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteRoleGates(t *testing.T) {
	_, r := setupRouterTest(t)

	donorToken, err := authentication.GenerateToken(9, models.RoleDonor)
	require.NoError(t, err)

	// a donor cannot reach hospital-only routes
	w := doJSON(t, r, http.MethodPatch, "/hospital/camps/5/attendance/9", donorToken, `{"status":"attended"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// and no token at all is rejected before any handler runs
	req := httptest.NewRequest(http.MethodPost, "/donor/blood-requests/7/respond", strings.NewReader(`{"response":"accepted"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
