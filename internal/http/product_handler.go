package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shukrishariif/grocery-app/internal/domain"
	"github.com/shukrishariif/grocery-app/internal/repository"
)

type ProductHandler struct {
	products repository.ProductRepository
	timeout  time.Duration
}

func NewProductHandler(products repository.ProductRepository, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

type productRequestDTO struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Stock       int    `json:"stock"`
	Description string `json:"description"`
}

func (dto productRequestDTO) toDomain() (*domain.Product, string) {
	if dto.Name == "" {
		return nil, "name is required"
	}
	price, err := decimal.NewFromString(dto.Price)
	if err != nil || price.IsNegative() {
		return nil, "price must be a non-negative decimal"
	}
	if dto.Stock < 0 {
		return nil, "stock must not be negative"
	}
	return &domain.Product{
		Name:        dto.Name,
		Category:    dto.Category,
		Price:       price,
		Image:       dto.Image,
		Stock:       dto.Stock,
		Description: dto.Description,
	}, ""
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req productRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, msg := req.toDomain()
	if msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	if err := h.products.Create(ctx, product); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.products.Get(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.List(ctx, r.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req productRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, msg := req.toDomain()
	if msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}
	product.ID = chi.URLParam(r, "productID")

	if err := h.products.Update(ctx, product); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.products.Delete(ctx, chi.URLParam(r, "productID")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
