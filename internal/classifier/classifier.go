package classifier

import (
	"context"
	"errors"
)

// Prediction es la etiqueta elegida por el modelo y su confianza.
type Prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Classifier es el modelo opaco: bytes de imagen in, prediccion out.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Prediction, error)
}

var (
	ErrEmptyImage  = errors.New("empty image")
	ErrUnavailable = errors.New("classifier unavailable")
)

// DefaultClassNames son las clases del modelo de hojas de papa.
var DefaultClassNames = []string{"Early Blight", "Late Blight", "Healthy"}

type disabledClassifier struct {
	reason string
}

// NewDisabled devuelve un Classifier que siempre falla con ErrUnavailable.
func NewDisabled(reason string) Classifier {
	return &disabledClassifier{reason: reason}
}

func (d *disabledClassifier) Classify(_ context.Context, _ []byte) (Prediction, error) {
	if d.reason == "" {
		return Prediction{}, ErrUnavailable
	}
	return Prediction{}, errors.Join(ErrUnavailable, errors.New(d.reason))
}
