package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"leafscan/internal/domain"
)

// ScanRepository persiste el historial de clasificaciones por usuario.
type ScanRepository interface {
	Create(ctx context.Context, scan domain.ScanRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error)
	Delete(ctx context.Context, userID, id string) error
}

type PgScanRepository struct {
	pool *pgxpool.Pool
}

func NewPgScanRepository(pool *pgxpool.Pool) *PgScanRepository {
	return &PgScanRepository{pool: pool}
}

func (r *PgScanRepository) Create(ctx context.Context, scan domain.ScanRecord) error {
	const query = `
		INSERT INTO scan_records (id, user_id, image_key, prediction, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
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

func (r *PgScanRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
	const query = `
		SELECT id, user_id, image_key, prediction, confidence, created_at
		FROM scan_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
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

func (r *PgScanRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM scan_records WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
