package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gusjafo/Light-Microservices/internal/contracts"
	"github.com/Gusjafo/Light-Microservices/internal/messaging"
	"github.com/Gusjafo/Light-Microservices/internal/user"
)

type stubRepo struct {
	createErr error
	getErr    error
	byID      map[string]*user.User
	users     []user.User
}

func (s *stubRepo) Create(ctx context.Context, u *user.User) error {
	return s.createErr
}

func (s *stubRepo) GetByID(ctx context.Context, userID string) (*user.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.byID[userID], nil
}

func (s *stubRepo) List(ctx context.Context) ([]user.User, error) {
	return s.users, nil
}

func newTestRouter(repo *stubRepo, bus *messaging.MemoryBus) http.Handler {
	return NewRouter(NewHandler(repo, bus, log.New(io.Discard, "", 0)))
}

func TestCreateUser_PublishesUserCreated(t *testing.T) {
	bus := messaging.NewMemoryBus()
	router := newTestRouter(&stubRepo{}, bus)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var u user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ada", u.Name)

	published := bus.Published(messaging.UserCreatedRoutingKey)
	require.Len(t, published, 1)

	var ev contracts.UserCreated
	require.NoError(t, json.Unmarshal(published[0], &ev))
	assert.Equal(t, contracts.EventTypeUserCreated, ev.EventType)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, u.ID, ev.UserID)
	assert.Equal(t, "ada@example.com", ev.Email)
}

func TestCreateUser_BadRequests(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed json", body: `{"name":`, wantMsg: "invalid request body"},
		{name: "blank name", body: `{"name":"  ","email":"ada@example.com"}`, wantMsg: "name and email are required"},
		{name: "missing email", body: `{"name":"Ada"}`, wantMsg: "name and email are required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bus := messaging.NewMemoryBus()
			router := newTestRouter(&stubRepo{}, bus)

			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantMsg, resp["error"])
			assert.Empty(t, bus.Published(messaging.UserCreatedRoutingKey))
		})
	}
}

func TestCreateUser_PersistFailureDoesNotPublish(t *testing.T) {
	bus := messaging.NewMemoryBus()
	router := newTestRouter(&stubRepo{createErr: errors.New("connection reset")}, bus)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, bus.Published(messaging.UserCreatedRoutingKey))
}

func TestGetUser_ExistenceContract(t *testing.T) {
	known := &user.User{
		ID:        "22222222-2222-2222-2222-222222222222",
		Name:      "Ada",
		Email:     "ada@example.com",
		CreatedAt: time.Now().UTC(),
	}
	router := newTestRouter(&stubRepo{byID: map[string]*user.User{known.ID: known}}, messaging.NewMemoryBus())

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+known.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, known.ID, got.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/users/99999999-9999-9999-9999-999999999999", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// A malformed id must answer 404 without touching the repository. If it
// reached the UUID column, Postgres would fail the query and the handler
// would 500; the admission client treats 500 as transient, so junk userIds
// would burn retries and eventually open its breaker against this service.
func TestGetUser_MalformedIDIsNotFound(t *testing.T) {
	repo := &stubRepo{getErr: errors.New(`invalid input syntax for type uuid: "not-a-uuid"`)}
	router := newTestRouter(repo, messaging.NewMemoryBus())

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers_EmptyIsArray(t *testing.T) {
	router := newTestRouter(&stubRepo{}, messaging.NewMemoryBus())

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
