package repository

import (
	"context"
	"database/sql"
	"fmt"

	"leafscan/internal/domain"
)

type SQLiteScanRepository struct {
	db *sql.DB
}

func NewSQLiteScanRepository(db *sql.DB) *SQLiteScanRepository {
	return &SQLiteScanRepository{db: db}
}

func (r *SQLiteScanRepository) Create(ctx context.Context, scan domain.ScanRecord) error {
	const query = `
		INSERT INTO scan_records (id, user_id, image_key, prediction, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		scan.ID,
		scan.UserID,
		scan.ImageKey,
		scan.Prediction,
		scan.Confidence,
		scan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

func (r *SQLiteScanRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
	const query = `
		SELECT id, user_id, image_key, prediction, confidence, created_at
		FROM scan_records
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select scans: %w", err)
	}
	defer rows.Close()

	var scans []domain.ScanRecord
	for rows.Next() {
		var s domain.ScanRecord
		if err := rows.Scan(&s.ID, &s.UserID, &s.ImageKey, &s.Prediction, &s.Confidence, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

func (r *SQLiteScanRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM scan_records WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
