package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"

	"github.com/digitml/mnistserve/internal/model"
)

// maxUploadBytes caps the multipart form size for /predict.
const maxUploadBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// Handler holds the request handlers' shared state. The classifier is
// constructed once at startup and is immutable afterwards.
type Handler struct {
	classifier *model.Classifier
}

// NewHandler creates a Handler around a classifier.
func NewHandler(classifier *model.Classifier) *Handler {
	return &Handler{classifier: classifier}
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Predict accepts a multipart upload in the "file" field, classifies it and
// returns {"digit": n, "confidence": p}.
//
// Client errors use the fixed details "Invalid image type" (unsupported
// declared content type) and "Could not read image" (undecodable bytes).
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided. Use 'file' as the form field name")
		return
	}
	defer file.Close()

	if !allowedImageTypes[header.Header.Get("Content-Type")] {
		writeError(w, http.StatusBadRequest, "Invalid image type")
		return
	}

	contents, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	img, _, err := image.Decode(bytes.NewReader(contents))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	digit, confidence, err := h.classifier.Classify(img)
	if err != nil {
		log.Printf("Prediction error: %v", err)
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	writeJSON(w, http.StatusOK, model.PredictionResponse{
		Digit:      digit,
		Confidence: confidence,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}
