package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shukrishariif/grocery-app/internal/domain"
	"github.com/shukrishariif/grocery-app/internal/repository"
)

type ContactHandler struct {
	messages repository.ContactRepository
	timeout  time.Duration
}

func NewContactHandler(messages repository.ContactRepository, timeout time.Duration) *ContactHandler {
	return &ContactHandler{
		messages: messages,
		timeout:  timeout,
	}
}

type contactRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req contactRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name, email and message are required")
		return
	}

	msg := &domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := h.messages.Insert(ctx, msg); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}
