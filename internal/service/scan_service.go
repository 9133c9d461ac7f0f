package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leafscan/internal/classifier"
	"leafscan/internal/domain"
	"leafscan/internal/repository"
	"leafscan/internal/storage"
)

const defaultScanListLimit = 50

var ErrScanNotFound = errors.New("scan not found")

// ScanService clasifica imagenes y guarda el historial del usuario.
type ScanService struct {
	logger     *zap.Logger
	classifier classifier.Classifier
	scans      repository.ScanRepository
	images     storage.ImageStore
}

// NewScanService arma el servicio; scans e images pueden ser nil.
func NewScanService(logger *zap.Logger, c classifier.Classifier, scans repository.ScanRepository, images storage.ImageStore) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{
		logger:     logger,
		classifier: c,
		scans:      scans,
		images:     images,
	}
}

type PredictInput struct {
	UserID      string
	Filename    string
	ContentType string
	Image       []byte
}

// Predict clasifica la imagen. Subida y registro son best effort: si fallan
// se loguea y la prediccion se devuelve igual.
func (s *ScanService) Predict(ctx context.Context, in PredictInput) (classifier.Prediction, error) {
	if len(in.Image) == 0 {
		return classifier.Prediction{}, classifier.ErrEmptyImage
	}
	pred, err := s.classifier.Classify(ctx, in.Image)
	if err != nil {
		return classifier.Prediction{}, err
	}
	s.logger.Info("prediction completed",
		zap.String("user_id", in.UserID),
		zap.String("filename", in.Filename),
		zap.String("class", pred.Class),
		zap.Float64("confidence", pred.Confidence),
	)

	scanID := uuid.NewString()
	var imageKey string
	if s.images != nil {
		key := imageKeyFor(in.UserID, scanID, in.Filename)
		if err := s.images.Put(ctx, key, in.ContentType, in.Image); err != nil {
			s.logger.Warn("image upload failed", zap.Error(err), zap.String("key", key))
		} else {
			imageKey = key
		}
	}

	if s.scans != nil && in.UserID != "" {
		record := domain.ScanRecord{
			ID:         scanID,
			UserID:     in.UserID,
			ImageKey:   imageKey,
			Prediction: pred.Class,
			Confidence: pred.Confidence,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.scans.Create(ctx, record); err != nil {
			s.logger.Warn("save scan record failed", zap.Error(err), zap.String("user_id", in.UserID))
		}
	}
	return pred, nil
}

// List devuelve los escaneos del usuario, mas nuevos primero.
func (s *ScanService) List(ctx context.Context, userID string, limit int) ([]domain.ScanRecord, error) {
	if s.scans == nil {
		return []domain.ScanRecord{}, nil
	}
	if limit <= 0 || limit > defaultScanListLimit {
		limit = defaultScanListLimit
	}
	scans, err := s.scans.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	if scans == nil {
		scans = []domain.ScanRecord{}
	}
	return scans, nil
}

// Delete borra un escaneo propio.
func (s *ScanService) Delete(ctx context.Context, userID, scanID string) error {
	if s.scans == nil {
		return ErrScanNotFound
	}
	if err := s.scans.Delete(ctx, userID, scanID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScanNotFound
		}
		return fmt.Errorf("delete scan: %w", err)
	}
	return nil
}

func imageKeyFor(userID, scanID, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 5 {
		ext = ""
	}
	owner := userID
	if owner == "" {
		owner = "anonymous"
	}
	d := time.Now().UTC()
	return fmt.Sprintf("scans/%s/%d/%02d/%s%s", owner, d.Year(), d.Month(), scanID, ext)
}
