package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SymptomStore = (*SymptomStore)(nil)

// SymptomStore implements driven.SymptomStore using PostgreSQL
type SymptomStore struct {
	db *DB
}

// NewSymptomStore creates a new SymptomStore
func NewSymptomStore(db *DB) *SymptomStore {
	return &SymptomStore{db: db}
}

// Save stores a symptom entry
func (s *SymptomStore) Save(ctx context.Context, entry *domain.SymptomEntry) error {
	query := `
		INSERT INTO symptom_entries (id, user_id, symptom_type, severity, duration_minutes, triggers, notes, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.SymptomType,
		entry.Severity,
		NullInt(entry.DurationMinutes),
		NullString(entry.Triggers),
		NullString(entry.Notes),
		entry.RecordedAt,
		entry.CreatedAt,
	)
	return err
}

const symptomColumns = `id, user_id, symptom_type, severity, duration_minutes, triggers, notes, recorded_at, created_at`

// ListSince retrieves entries recorded on or after since, newest first
func (s *SymptomStore) ListSince(ctx context.Context, userID, symptomType string, since time.Time, limit int) ([]*domain.SymptomEntry, error) {
	query := `
		SELECT ` + symptomColumns + `
		FROM symptom_entries
		WHERE user_id = $1 AND recorded_at >= $2
		  AND ($3 = '' OR symptom_type = $3)
		ORDER BY recorded_at DESC
		LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since, symptomType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymptoms(rows)
}

// ListBetween retrieves entries recorded in [start, end)
func (s *SymptomStore) ListBetween(ctx context.Context, userID string, start, end time.Time) ([]*domain.SymptomEntry, error) {
	query := `
		SELECT ` + symptomColumns + `
		FROM symptom_entries
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymptoms(rows)
}

// DailySeverity returns the average severity per day for a symptom type
func (s *SymptomStore) DailySeverity(ctx context.Context, userID, symptomType string, since time.Time) (map[string]float64, error) {
	query := `
		SELECT to_char(recorded_at, 'YYYY-MM-DD') AS day, AVG(severity)
		FROM symptom_entries
		WHERE user_id = $1 AND symptom_type = $2 AND recorded_at >= $3
		GROUP BY day
	`
	rows, err := s.db.QueryContext(ctx, query, userID, symptomType, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var day string
		var avg float64
		if err := rows.Scan(&day, &avg); err != nil {
			return nil, err
		}
		values[day] = avg
	}
	return values, rows.Err()
}

// Delete removes an entry owned by userID
func (s *SymptomStore) Delete(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM symptom_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func scanSymptoms(rows *sql.Rows) ([]*domain.SymptomEntry, error) {
	var entries []*domain.SymptomEntry
	for rows.Next() {
		var entry domain.SymptomEntry
		var duration sql.NullInt64
		var triggers, notes sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.SymptomType,
			&entry.Severity,
			&duration,
			&triggers,
			&notes,
			&entry.RecordedAt,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.DurationMinutes = IntPtr(duration)
		entry.Triggers = StringPtr(triggers)
		entry.Notes = StringPtr(notes)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
