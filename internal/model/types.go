package model

// PredictionResponse is the success body for POST /predict.
type PredictionResponse struct {
	Digit      int     `json:"digit"`
	Confidence float32 `json:"confidence"`
}

// ErrorResponse is the body for client and server errors.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
