package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomarker-insight-server/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO classification_history").
		WithArgs("Glucose", 110.0, "mg/dL", "prediabetic", "2024-01-15", "api", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rec := &Record{
		Biomarker: "Glucose",
		Value:     110,
		Unit:      "mg/dL",
		Status:    domain.BandPrediabetic,
		ReadAt:    "2024-01-15",
		Source:    "api",
	}
	require.NoError(t, store.Save(context.Background(), rec))
	assert.Equal(t, int64(7), rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "biomarker", "value", "unit", "status", "read_at", "source", "created_at"}).
		AddRow(int64(2), "HDL", 35.0, "mg/dL", "low", "", "api", now).
		AddRow(int64(1), "Glucose", 95.0, "mg/dL", "normal", "", "mcp", now)

	mock.ExpectQuery("SELECT (.+) FROM classification_history").
		WithArgs(10, 0).
		WillReturnRows(rows)

	records, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "HDL", records[0].Biomarker)
	assert.Equal(t, domain.BandLow, records[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM classification_history").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	require.Error(t, err)
}
