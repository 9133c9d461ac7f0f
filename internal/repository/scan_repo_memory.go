package repository

import (
	"context"
	"sort"
	"sync"

	"leafscan/internal/domain"
)

type MemoryScanRepository struct {
	mu    sync.Mutex
	scans map[string]domain.ScanRecord
}

func NewMemoryScanRepository() *MemoryScanRepository {
	return &MemoryScanRepository{scans: make(map[string]domain.ScanRecord)}
}

func (r *MemoryScanRepository) Create(_ context.Context, scan domain.ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.scans[scan.ID]; exists {
		return ErrDuplicate
	}
	r.scans[scan.ID] = scan
	return nil
}

func (r *MemoryScanRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ScanRecord
	for _, s := range r.scans {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryScanRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scans[id]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	delete(r.scans, id)
	return nil
}
