package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/shukrishariif/grocery-app/internal/imagehost"
)

type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (*imagehost.UploadResult, error)
}

type UploadHandler struct {
	uploader Uploader
	timeout  time.Duration
}

func NewUploadHandler(uploader Uploader, timeout time.Duration) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		timeout:  timeout,
	}
}

const maxUploadSize = 10 << 20 // 10MB

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "expected multipart form with an image field")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "image field is required")
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(ctx, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}
