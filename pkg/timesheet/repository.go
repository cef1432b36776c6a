package timesheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/weektally/weektally/pkg/week"
)

var ErrTimesheetNotFound = errors.New("timesheet not found")

// Repository persists one timesheet document per week, keyed by the week's
// Monday. The storage engine behind it is an implementation detail: Postgres
// in normal deployments, a flat JSON file per week when no database is
// configured, and an in-memory stub in tests.
type Repository interface {
	GetAll(ctx context.Context) (map[week.Key]Document, error)
	Get(ctx context.Context, key week.Key) (Document, error)
	Upsert(ctx context.Context, key week.Key, doc Document) (Document, error)
	Delete(ctx context.Context, key week.Key) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetAll(ctx context.Context) (map[week.Key]Document, error) {
	query := `SELECT week_start, data FROM timesheet ORDER BY week_start`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query timesheets: %w", err)
	}
	defer rows.Close()

	documents := make(map[week.Key]Document)
	for rows.Next() {
		var weekStart time.Time
		var data []byte
		if err := rows.Scan(&weekStart, &data); err != nil {
			return nil, err
		}
		key := week.KeyOf(weekStart)
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("could not decode timesheet %s: %w", key, err)
		}
		documents[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *postgresRepository) Get(ctx context.Context, key week.Key) (Document, error) {
	query := `SELECT data FROM timesheet WHERE week_start = $1`
	var data []byte
	err := r.db.QueryRow(ctx, query, key.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("could not get timesheet: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not decode timesheet %s: %w", key, err)
	}
	return doc, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, key week.Key, doc Document) (Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not encode timesheet: %w", err)
	}
	query := `INSERT INTO timesheet (week_start, data)
			  VALUES ($1, $2)
			  ON CONFLICT (week_start) DO UPDATE
			      SET data = EXCLUDED.data, updated_at = now()
			  RETURNING data`
	var stored []byte
	if err := r.db.QueryRow(ctx, query, key.String(), data).Scan(&stored); err != nil {
		return nil, fmt.Errorf("could not upsert timesheet: %w", err)
	}
	var storedDoc Document
	if err := json.Unmarshal(stored, &storedDoc); err != nil {
		return nil, fmt.Errorf("could not decode stored timesheet: %w", err)
	}
	return storedDoc, nil
}

func (r *postgresRepository) Delete(ctx context.Context, key week.Key) error {
	query := `DELETE FROM timesheet WHERE week_start = $1`
	result, err := r.db.Exec(ctx, query, key.String())
	if err != nil {
		return fmt.Errorf("could not delete timesheet: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTimesheetNotFound
	}
	return nil
}
