package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gusjafo/Light-Microservices/internal/resilience"
)

func testPolicy(name string) *resilience.Policy {
	return resilience.New(resilience.Config{
		Name:             name,
		MaxRetries:       3,
		BackoffBase:      time.Millisecond,
		BreakerThreshold: 5,
		BreakerCooldown:  time.Minute,
	})
}

func TestUserClient_Exists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/u1":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, srv.Client(), testPolicy("user-service"))

	exists, err := c.Exists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

// Malformed ids are answered 404 by user-service, and a 404 is a domain
// outcome: it must not burn retries or count against the breaker, or a
// handful of junk userIds would deny service to valid orders for the whole
// cooldown window.
func TestUserClient_JunkIDsDoNotPoisonBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/api/users/not-a-uuid" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, srv.Client(), testPolicy("user-service"))

	for i := 0; i < 6; i++ {
		exists, err := c.Exists(context.Background(), "not-a-uuid")
		require.NoError(t, err)
		assert.False(t, exists)
	}
	// One request each, never retried.
	assert.Equal(t, int32(6), hits.Load())

	exists, err := c.Exists(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserClient_RetriesServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, srv.Client(), testPolicy("user-service"))

	exists, err := c.Exists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int32(3), hits.Load())
}

func TestUserClient_Unavailable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, srv.Client(), testPolicy("user-service"))

	_, err := c.Exists(context.Background(), "u1")
	require.ErrorIs(t, err, resilience.ErrUnavailable)
	assert.Equal(t, int32(4), hits.Load())
}

func TestProductClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products/p1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","name":"widget","price":3.5,"stock":12}`))
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, srv.Client(), testPolicy("inventory-service"))

	p, err := c.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "widget", p.Name)
	assert.Equal(t, 3.5, p.Price)
	assert.Equal(t, 12, p.Stock)
}

func TestProductClient_NotFoundNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, srv.Client(), testPolicy("inventory-service"))

	_, err := c.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProductNotFound)
	require.NotErrorIs(t, err, resilience.ErrUnavailable)
	assert.Equal(t, int32(1), hits.Load())
}

func TestProductClient_RetriesTooManyRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","stock":1}`))
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, srv.Client(), testPolicy("inventory-service"))

	p, err := c.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
	assert.Equal(t, int32(2), hits.Load())
}

func TestProductClient_CircuitOpenMisreportsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	policy := testPolicy("inventory-service")
	c := NewProductClient(srv.URL, srv.Client(), policy)

	// Trip the breaker.
	for i := 0; i < 5; i++ {
		_, err := c.Get(context.Background(), "p1")
		require.ErrorIs(t, err, resilience.ErrUnavailable)
	}

	// Open circuit must surface as unavailable, never as not-found.
	_, err := c.Get(context.Background(), "p1")
	require.ErrorIs(t, err, resilience.ErrUnavailable)
	require.NotErrorIs(t, err, ErrProductNotFound)
}
