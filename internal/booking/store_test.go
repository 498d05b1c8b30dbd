package booking

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewGormStore(db), mock
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestGormStoreDoctorSlotTaken(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(countRows(1))

	taken, err := store.DoctorSlotTaken("doc-1", "2025-06-17", "14:00:00", "")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStorePatientSlotFree(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(countRows(0))

	taken, err := store.PatientSlotTaken("pat-1", "2025-06-17", "14:00:00", "appt-9")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStorePatientHasActiveUpcoming(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(countRows(2))

	active, err := store.PatientHasActiveUpcoming("pat-1", "2025-06-16", "")
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreLockedTakesRowLocks(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`.*FOR UPDATE").
		WillReturnRows(countRows(0))

	locked := store.Locked(storeDB(store))
	taken, err := locked.DoctorSlotTaken("doc-1", "2025-06-17", "14:00:00", "")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreDoctorByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `doctors`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	doctor, err := store.DoctorByID("doc-404")
	require.NoError(t, err)
	assert.Nil(t, doctor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// storeDB exposes the wrapped handle for the locking test without widening
// the store's API.
func storeDB(s *GormStore) *gorm.DB {
	return s.db
}
