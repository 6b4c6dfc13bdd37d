package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gusjafo/Light-Microservices/internal/resilience"
)

// UserClient answers the user-existence admission check.
// Assumes user-service exposes: GET /api/users/{id} => 200 if exists, 404 if not.
type UserClient struct {
	base   *baseClient
	policy *resilience.Policy
}

func NewUserClient(baseURL string, httpClient *http.Client, policy *resilience.Policy) *UserClient {
	return &UserClient{
		base:   newBaseClient("user-service", baseURL, httpClient),
		policy: policy,
	}
}

// Exists reports whether the user exists. A 404 is a valid negative result,
// not an error; transient failures are retried and may surface as
// resilience.ErrUnavailable.
func (c *UserClient) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool

	err := c.policy.Do(ctx, func(ctx context.Context) error {
		resp, err := c.base.get(ctx, "/api/users/"+userID)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			exists = false
			return nil
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			exists = true
			return nil
		default:
			return statusError(resp.StatusCode, fmt.Sprintf("user lookup %s", userID))
		}
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}
