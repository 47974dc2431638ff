package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottSyms/densitytiles/internal/database"
	"github.com/ScottSyms/densitytiles/internal/models"
)

var (
	mockDB *sql.DB
	mock   sqlmock.Sqlmock
)

func setUp() {
	mockDB, mock, _ = sqlmock.New()
}

func tearDown() {
	mockDB.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "points.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestPointRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewPointRepository(db)
	ctx := context.Background()

	in := []models.Point{
		{Longitude: 1.5, Latitude: -2.5, Timestamp: time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)},
		{Longitude: 120, Latitude: 30},
	}
	require.NoError(t, repo.Insert(ctx, in))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	out, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Longitude, out[0].Longitude)
	assert.Equal(t, in[0].Latitude, out[0].Latitude)
	assert.True(t, in[0].Timestamp.Equal(out[0].Timestamp))
	assert.False(t, out[1].HasTimestamp())
}

func TestPointRepositoryEmpty(t *testing.T) {
	repo := NewPointRepository(openTestDB(t))

	out, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPointRepositoryQueryError(t *testing.T) {
	it(func() {
		boom := errors.New("disk on fire")
		mock.ExpectQuery("SELECT longitude, latitude, dataTime FROM track_points").WillReturnError(boom)

		_, err := NewPointRepository(mockDB).GetAll(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPointRepositoryScanError(t *testing.T) {
	it(func() {
		rows := sqlmock.NewRows([]string{"longitude", "latitude", "dataTime"}).
			AddRow(1.0, 2.0, nil).
			AddRow("east", 2.0, nil)
		mock.ExpectQuery("SELECT longitude, latitude, dataTime FROM track_points").WillReturnRows(rows)

		_, err := NewPointRepository(mockDB).GetAll(context.Background())
		assert.ErrorContains(t, err, "failed to scan track point")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPointRepositoryInsertRollsBack(t *testing.T) {
	it(func() {
		boom := errors.New("constraint failed")
		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO track_points")
		prep.ExpectExec().WithArgs(1.0, 2.0, nil).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs(3.0, 4.0, nil).WillReturnError(boom)
		mock.ExpectRollback()

		err := NewPointRepository(mockDB).Insert(context.Background(), []models.Point{
			{Longitude: 1, Latitude: 2},
			{Longitude: 3, Latitude: 4},
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
