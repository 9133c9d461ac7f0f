package classifier

import "context"

// MockClient permite tests sin llamar a un modelo real.
type MockClient struct {
	Prediction Prediction
	Err        error
	Calls      int
	LastImage  []byte
}

func (m *MockClient) Classify(_ context.Context, image []byte) (Prediction, error) {
	m.Calls++
	m.LastImage = image
	if len(image) == 0 {
		return Prediction{}, ErrEmptyImage
	}
	return m.Prediction, m.Err
}
