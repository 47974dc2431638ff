package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ScottSyms/densitytiles/internal/database"
	"github.com/ScottSyms/densitytiles/internal/models"
)

// PointRepository handles database operations for track points
type PointRepository struct {
	db *sql.DB
}

// NewPointRepository creates a new point repository
func NewPointRepository(db *sql.DB) *PointRepository {
	return &PointRepository{db: db}
}

// GetAll loads every point. dataTime is unix seconds and may be NULL.
func (r *PointRepository) GetAll(ctx context.Context) ([]models.Point, error) {
	query := `SELECT longitude, latitude, dataTime FROM track_points ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query track points: %w", err)
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		var (
			p        models.Point
			dataTime sql.NullInt64
		)
		if err := rows.Scan(&p.Longitude, &p.Latitude, &dataTime); err != nil {
			return nil, fmt.Errorf("failed to scan track point: %w", err)
		}
		if dataTime.Valid {
			p.Timestamp = time.Unix(dataTime.Int64, 0).UTC()
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate track points: %w", err)
	}

	return points, nil
}

// Count returns the number of stored points
func (r *PointRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM track_points`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count track points: %w", err)
	}
	return total, nil
}

// Insert stores points in a single transaction
func (r *PointRepository) Insert(ctx context.Context, points []models.Point) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO track_points (longitude, latitude, dataTime) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range points {
			var dataTime sql.NullInt64
			if points[i].HasTimestamp() {
				dataTime = sql.NullInt64{Int64: points[i].Timestamp.Unix(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, points[i].Longitude, points[i].Latitude, dataTime); err != nil {
				return fmt.Errorf("failed to insert track point %d: %w", i, err)
			}
		}
		return nil
	})
}
