package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Gusjafo/Light-Microservices/internal/resilience"
)

// ErrProductNotFound is the valid negative outcome of a product lookup.
var ErrProductNotFound = errors.New("product not found")

// ProductSnapshot is what the admission check needs from inventory-service.
type ProductSnapshot struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// ProductClient fetches product snapshots for the admission check.
// Assumes inventory-service exposes: GET /api/products/{id} => snapshot or 404.
type ProductClient struct {
	base   *baseClient
	policy *resilience.Policy
}

func NewProductClient(baseURL string, httpClient *http.Client, policy *resilience.Policy) *ProductClient {
	return &ProductClient{
		base:   newBaseClient("inventory-service", baseURL, httpClient),
		policy: policy,
	}
}

// Get returns the product snapshot or ErrProductNotFound. Not-found is never
// retried; transient failures may surface as resilience.ErrUnavailable.
func (c *ProductClient) Get(ctx context.Context, productID string) (*ProductSnapshot, error) {
	var snapshot *ProductSnapshot

	err := c.policy.Do(ctx, func(ctx context.Context) error {
		resp, err := c.base.get(ctx, "/api/products/"+productID)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return resilience.Permanent(ErrProductNotFound)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			var s ProductSnapshot
			if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
				return resilience.Permanent(fmt.Errorf("decode product %s: %w", productID, err))
			}
			snapshot = &s
			return nil
		default:
			return statusError(resp.StatusCode, fmt.Sprintf("product lookup %s", productID))
		}
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
