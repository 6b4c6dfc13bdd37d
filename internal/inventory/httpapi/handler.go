package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Gusjafo/Light-Microservices/internal/inventory"
)

type Handler struct {
	repo inventory.Repository
}

func NewHandler(repo inventory.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GetProduct serves the snapshot contract the order-service admission check
// relies on: {id, name, price, stock} or 404. A malformed id is a plain
// not-found; it must never reach the UUID column and surface as 500.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if _, err := uuid.Parse(productID); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	p, err := h.repo.Get(r.Context(), productID)
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

type upsertRequest struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// UpsertProduct seeds or adjusts a product. Operator path only; order
// processing never calls it.
func (h *Handler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Stock < 0 || req.Price < 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	p := inventory.Product{ID: req.ID, Name: req.Name, Price: req.Price, Stock: req.Stock}
	if err := h.repo.Upsert(r.Context(), p); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
