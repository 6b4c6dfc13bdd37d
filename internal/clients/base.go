package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Gusjafo/Light-Microservices/internal/resilience"
)

type baseClient struct {
	name    string
	baseURL *url.URL
	http    *http.Client
}

func newBaseClient(name, baseURL string, httpClient *http.Client) *baseClient {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &baseClient{name: name, baseURL: u, http: httpClient}
}

func (c *baseClient) get(ctx context.Context, path string) (*http.Response, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	return c.http.Do(req)
}

// statusError classifies a non-2xx, non-404 response. 5xx and 429 are
// transient and retried; other 4xx are permanent.
func statusError(status int, op string) error {
	err := fmt.Errorf("%s: unexpected status %d", op, status)
	if status >= 500 || status == http.StatusTooManyRequests {
		return err
	}
	return resilience.Permanent(err)
}
