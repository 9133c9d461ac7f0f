package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leafscan/internal/classifier"
	"leafscan/internal/service"
)

// ScanHandler expone la clasificacion y el historial de escaneos.
type ScanHandler struct {
	logger         *zap.Logger
	scans          *service.ScanService
	maxUploadBytes int64
}

func NewScanHandler(logger *zap.Logger, scans *service.ScanService, maxUploadBytes int64) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ScanHandler{logger: logger, scans: scans, maxUploadBytes: maxUploadBytes}
}

// Predict maneja POST /predict con un archivo multipart "file".
func (h *ScanHandler) Predict(c *gin.Context) {
	userID, _ := GetAuthUserID(c)

	// Margen para los headers del multipart.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+64<<10)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	if fh.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Error("open upload failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		h.logger.Error("read upload failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read file"})
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "file too large"})
		return
	}

	pred, err := h.scans.Predict(c.Request.Context(), service.PredictInput{
		UserID:      userID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Image:       data,
	})
	if err != nil {
		switch {
		case errors.Is(err, classifier.ErrEmptyImage):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "empty image"})
		case errors.Is(err, classifier.ErrUnavailable):
			h.logger.Warn("classifier unavailable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "classifier unavailable"})
		default:
			h.logger.Error("predict failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"detail": "prediction failed"})
		}
		return
	}
	c.JSON(http.StatusOK, pred)
}

// List maneja GET /scans.
func (h *ScanHandler) List(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	scans, err := h.scans.List(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("list scans failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

// Delete maneja DELETE /scans/:id.
func (h *ScanHandler) Delete(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	if err := h.scans.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrScanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "scan not found"})
			return
		}
		h.logger.Error("delete scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		return
	}
	c.Status(http.StatusNoContent)
}
