package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LabStore = (*LabStore)(nil)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// LabStore implements driven.LabStore using PostgreSQL
type LabStore struct {
	db *DB
}

// NewLabStore creates a new LabStore
func NewLabStore(db *DB) *LabStore {
	return &LabStore{db: db}
}

// Save inserts a single measurement. A duplicate (user_id, test_name,
// recorded_at) surfaces as domain.ErrAlreadyExists.
func (s *LabStore) Save(ctx context.Context, lab *domain.LabResult) error {
	query := `
		INSERT INTO lab_results (id, document_id, user_id, test_name, test_code, value, unit, reference_min, reference_max, status, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		lab.ID,
		NullString(lab.DocumentID),
		lab.UserID,
		lab.TestName,
		NullString(lab.TestCode),
		lab.Value.String(),
		lab.Unit,
		nullDecimal(lab.ReferenceMin),
		nullDecimal(lab.ReferenceMax),
		nullStatus(lab.Status),
		lab.RecordedAt,
		lab.CreatedAt,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return domain.ErrAlreadyExists
	}
	return err
}

const labColumns = `id, document_id, user_id, test_name, test_code, value, unit, reference_min, reference_max, status, recorded_at, created_at`

// ListRecent retrieves measurements recorded on or after since, newest first
func (s *LabStore) ListRecent(ctx context.Context, userID string, since time.Time, testName string, limit int) ([]*domain.LabResult, error) {
	query := `
		SELECT ` + labColumns + `
		FROM lab_results
		WHERE user_id = $1 AND recorded_at >= $2
		  AND ($3 = '' OR test_name ILIKE '%' || $3 || '%')
		ORDER BY recorded_at DESC
		LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since, testName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLabs(rows)
}

// ListByTest retrieves measurements matching testName in chronological order
func (s *LabStore) ListByTest(ctx context.Context, userID, testName string, since time.Time) ([]*domain.LabResult, error) {
	query := `
		SELECT ` + labColumns + `
		FROM lab_results
		WHERE user_id = $1 AND recorded_at >= $2 AND test_name ILIKE '%' || $3 || '%'
		ORDER BY recorded_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since, testName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLabs(rows)
}

// ListOnDate retrieves measurements recorded on a specific day
func (s *LabStore) ListOnDate(ctx context.Context, userID string, day time.Time) ([]*domain.LabResult, error) {
	query := `
		SELECT ` + labColumns + `
		FROM lab_results
		WHERE user_id = $1 AND recorded_at = $2
		ORDER BY test_name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLabs(rows)
}

// DailyValues returns one value per day for a test, keyed by YYYY-MM-DD
func (s *LabStore) DailyValues(ctx context.Context, userID, testName string, since time.Time) (map[string]float64, error) {
	query := `
		SELECT to_char(recorded_at, 'YYYY-MM-DD'), AVG(value)
		FROM lab_results
		WHERE user_id = $1 AND recorded_at >= $2 AND test_name ILIKE '%' || $3 || '%'
		GROUP BY recorded_at
	`
	rows, err := s.db.QueryContext(ctx, query, userID, since, testName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var day string
		var value float64
		if err := rows.Scan(&day, &value); err != nil {
			return nil, err
		}
		values[day] = value
	}
	return values, rows.Err()
}

// Delete removes a measurement owned by userID
func (s *LabStore) Delete(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM lab_results WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func scanLabs(rows *sql.Rows) ([]*domain.LabResult, error) {
	var labs []*domain.LabResult
	for rows.Next() {
		var lab domain.LabResult
		var documentID, testCode, status sql.NullString
		var value string
		var refMin, refMax sql.NullString

		if err := rows.Scan(
			&lab.ID,
			&documentID,
			&lab.UserID,
			&lab.TestName,
			&testCode,
			&value,
			&lab.Unit,
			&refMin,
			&refMax,
			&status,
			&lab.RecordedAt,
			&lab.CreatedAt,
		); err != nil {
			return nil, err
		}

		v, err := decimal.NewFromString(value)
		if err != nil {
			return nil, err
		}
		lab.Value = v
		lab.DocumentID = StringPtr(documentID)
		lab.TestCode = StringPtr(testCode)
		lab.ReferenceMin, err = decimalPtr(refMin)
		if err != nil {
			return nil, err
		}
		lab.ReferenceMax, err = decimalPtr(refMax)
		if err != nil {
			return nil, err
		}
		if status.Valid {
			st := domain.LabStatus(status.String)
			lab.Status = &st
		}
		labs = append(labs, &lab)
	}
	return labs, rows.Err()
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func decimalPtr(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullStatus(s *domain.LabStatus) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}
