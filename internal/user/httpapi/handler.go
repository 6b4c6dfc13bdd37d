package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Gusjafo/Light-Microservices/internal/contracts"
	"github.com/Gusjafo/Light-Microservices/internal/messaging"
	"github.com/Gusjafo/Light-Microservices/internal/user"
)

type Handler struct {
	repo   user.Repository
	pub    messaging.Publisher
	logger *log.Logger
}

func NewHandler(repo user.Repository, pub messaging.Publisher, logger *log.Logger) *Handler {
	return &Handler{repo: repo, pub: pub, logger: logger}
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u := &user.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.Create(ctx, u); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	ev := contracts.UserCreated{
		EventType: contracts.EventTypeUserCreated,
		EventID:   uuid.NewString(),
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if err := h.pub.PublishJSON(ctx, messaging.UserCreatedRoutingKey, ev); err != nil {
		h.logger.Printf("publish UserCreated for user %s: %v", u.ID, err)
	}

	writeJSON(w, http.StatusCreated, u)
}

// GetUser is the existence-lookup contract the order-service admission
// check calls: 200 if the user exists, 404 if not. A malformed id is a
// plain not-found; it must never reach the UUID column and surface as 500.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if _, err := uuid.Parse(userID); err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.repo.GetByID(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.repo.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	if users == nil {
		users = []user.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
