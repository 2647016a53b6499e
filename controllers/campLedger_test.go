package controllers

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLedgerDB(t *testing.T) (sqlmock.Sqlmock, *gorm.DB) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return mock, db
}

func campRow(campID, hospitalID uint, status models.CampStatus, date time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"camp_id", "hospital_id", "title", "status", "date"}).
		AddRow(campID, hospitalID, "City Drive", string(status), date)
}

func TestSweepCampsUsesHorizonCutoff(t *testing.T) {
	mock, db := setupLedgerDB(t)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-SweepHorizon)

	mock.ExpectExec(`UPDATE "blood_camps" SET`).
		WithArgs(string(models.CampCompleted), sqlmock.AnyArg(), string(models.CampUpcoming), cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	swept, err := SweepCamps(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), swept)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepCampsNothingToDo(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectExec(`UPDATE "blood_camps" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	swept, err := SweepCamps(db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, swept)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterInterestFirstTime(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))
	mock.ExpectQuery(`INSERT INTO "interest_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "interest_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := RegisterInterest(db, 5, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterInterestAlreadyRegistered(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))
	// conflict on the composite index: insert touches no rows
	mock.ExpectQuery(`INSERT INTO "interest_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := RegisterInterest(db, 5, 9)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterInterestCampMissing(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(sqlmock.NewRows([]string{"camp_id"}))

	_, err := RegisterInterest(db, 404, 9)
	assert.ErrorIs(t, err, ErrCampNotFound)
}

func TestRegisterInterestCampClosed(t *testing.T) {
	mock, db := setupLedgerDB(t)

	for _, status := range []models.CampStatus{models.CampCompleted, models.CampCancelled} {
		mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
			WillReturnRows(campRow(5, 2, status, time.Now().Add(-72*time.Hour)))

		_, err := RegisterInterest(db, 5, 9)
		assert.ErrorIs(t, err, ErrCampClosed)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelInterestNotRegistered(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))
	mock.ExpectExec(`DELETE FROM "interest_entries"`).
		WithArgs(uint(5), uint(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := CancelInterest(db, 5, 9)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelInterestRemovesEntry(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))
	mock.ExpectExec(`DELETE FROM "interest_entries"`).
		WithArgs(uint(5), uint(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "interest_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := CancelInterest(db, 5, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAttendanceRejectsUnknownStatus(t *testing.T) {
	_, db := setupLedgerDB(t)

	_, err := SetAttendance(db, 5, 2, 9, models.AttendanceStatus("present"))
	assert.ErrorIs(t, err, ErrInvalidAttendance)
}

func TestSetAttendanceRequiresOwnership(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now()))

	_, err := SetAttendance(db, 5, 99, 9, models.AttendanceAttended)
	assert.ErrorIs(t, err, ErrNotCampOwner)
}

func TestCancelCampSoftCancels(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))
	mock.ExpectExec(`UPDATE "blood_camps" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := CancelCamp(db, 5, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelCampWrongHospital(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))

	err := CancelCamp(db, 5, 99)
	assert.ErrorIs(t, err, ErrNotCampOwner)
}

func TestUpdateCampFieldsFiltersColumns(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))
	mock.ExpectExec(`UPDATE "blood_camps" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	camp, err := UpdateCampFields(db, 5, 2, map[string]interface{}{
		"title":       "Revised Drive",
		"status":      "completed", // not an editable column
		"hospital_id": 99,          // ownership is not editable either
	})
	require.NoError(t, err)
	assert.NotNil(t, camp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCampFieldsNoEditableColumns(t *testing.T) {
	mock, db := setupLedgerDB(t)

	mock.ExpectQuery(`SELECT \* FROM "blood_camps"`).
		WillReturnRows(campRow(5, 2, models.CampUpcoming, time.Now().Add(48*time.Hour)))

	camp, err := UpdateCampFields(db, 5, 2, map[string]interface{}{"status": "completed"})
	require.NoError(t, err)
	assert.NotNil(t, camp)
	// no UPDATE expected: the only requested column is not editable
	assert.NoError(t, mock.ExpectationsWereMet())
}
