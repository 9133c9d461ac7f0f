package domain

import "time"

// ScanRecord guarda el resultado de clasificar una imagen de un usuario.
type ScanRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ImageKey   string    `json:"image_key,omitempty"`
	Prediction string    `json:"prediction"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}
