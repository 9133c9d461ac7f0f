package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"leafscan/internal/classifier"
	"leafscan/internal/repository"
)

type mockImageStore struct {
	keys        []string
	contentType string
	err         error
}

func (m *mockImageStore) Put(_ context.Context, key, contentType string, _ []byte) error {
	m.keys = append(m.keys, key)
	m.contentType = contentType
	return m.err
}

func TestScanServicePredict_SavesRecordAndImage(t *testing.T) {
	model := &classifier.MockClient{Prediction: classifier.Prediction{Class: "Healthy", Confidence: 0.93}}
	scans := repository.NewMemoryScanRepository()
	images := &mockImageStore{}
	svc := NewScanService(zap.NewNop(), model, scans, images)
	ctx := context.Background()

	pred, err := svc.Predict(ctx, PredictInput{UserID: "u1", Filename: "leaf.JPG", ContentType: "image/jpeg", Image: []byte("img")})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Class != "Healthy" || pred.Confidence != 0.93 {
		t.Fatalf("unexpected prediction: %+v", pred)
	}
	if len(images.keys) != 1 || !strings.HasPrefix(images.keys[0], "scans/u1/") || !strings.HasSuffix(images.keys[0], ".jpg") {
		t.Fatalf("unexpected image keys: %+v", images.keys)
	}

	list, err := svc.List(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Prediction != "Healthy" || list[0].ImageKey != images.keys[0] {
		t.Fatalf("unexpected scans: %+v", list)
	}
}

func TestScanServicePredict_UploadFailureIsNotFatal(t *testing.T) {
	model := &classifier.MockClient{Prediction: classifier.Prediction{Class: "Early Blight", Confidence: 0.6}}
	scans := repository.NewMemoryScanRepository()
	svc := NewScanService(zap.NewNop(), model, scans, &mockImageStore{err: errors.New("s3 down")})
	ctx := context.Background()

	if _, err := svc.Predict(ctx, PredictInput{UserID: "u1", Image: []byte("img")}); err != nil {
		t.Fatalf("predict: %v", err)
	}
	list, _ := svc.List(ctx, "u1", 10)
	if len(list) != 1 || list[0].ImageKey != "" {
		t.Fatalf("expected record without image key, got %+v", list)
	}
}

func TestScanServicePredict_ClassifierErrors(t *testing.T) {
	svc := NewScanService(zap.NewNop(), &classifier.MockClient{Err: classifier.ErrUnavailable}, nil, nil)

	if _, err := svc.Predict(context.Background(), PredictInput{Image: nil}); !errors.Is(err, classifier.ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := svc.Predict(context.Background(), PredictInput{Image: []byte("x")}); !errors.Is(err, classifier.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestScanServiceDelete(t *testing.T) {
	model := &classifier.MockClient{Prediction: classifier.Prediction{Class: "Healthy", Confidence: 1}}
	svc := NewScanService(zap.NewNop(), model, repository.NewMemoryScanRepository(), nil)
	ctx := context.Background()

	if _, err := svc.Predict(ctx, PredictInput{UserID: "u1", Image: []byte("img")}); err != nil {
		t.Fatalf("predict: %v", err)
	}
	list, _ := svc.List(ctx, "u1", 10)
	if len(list) != 1 {
		t.Fatalf("expected one scan, got %d", len(list))
	}

	if err := svc.Delete(ctx, "u2", list[0].ID); !errors.Is(err, ErrScanNotFound) {
		t.Fatalf("expected ErrScanNotFound for other user, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", list[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "u1", list[0].ID); !errors.Is(err, ErrScanNotFound) {
		t.Fatalf("expected ErrScanNotFound after delete, got %v", err)
	}
}

func TestScanServiceWithoutRepository(t *testing.T) {
	svc := NewScanService(zap.NewNop(), &classifier.MockClient{}, nil, nil)

	list, err := svc.List(context.Background(), "u1", 10)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v, %v", list, err)
	}
}

func TestImageKeyFor(t *testing.T) {
	key := imageKeyFor("", "id", `C:\photos\leaf.PNG`)
	if !strings.HasPrefix(key, "scans/anonymous/") || !strings.HasSuffix(key, "/id.png") {
		t.Fatalf("unexpected key: %s", key)
	}
	if key := imageKeyFor("u1", "id", "weird.extension-too-long"); !strings.HasSuffix(key, "/id") {
		t.Fatalf("expected long extension dropped, got %s", key)
	}
}
