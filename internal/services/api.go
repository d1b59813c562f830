// Shared HTTP plumbing for JSON APIs
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/mtcat/internal/shared"
)

// APIService performs GET requests against a JSON API and maps HTTP failures onto
// the shared sentinel errors.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates an API client rooted at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Get performs a GET request to path with query and returns the raw response.
// Non-2xx responses are returned as errors.
func (a *APIService) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return a.GetURL(ctx, fullURL)
}

// GetURL performs a GET request to an absolute URL, as returned by pagination links.
func (a *APIService) GetURL(ctx context.Context, fullURL string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	if err := statusError(resp.StatusCode, body); err != nil {
		return apiResp, err
	}
	return apiResp, nil
}

// GetJSON performs a GET request and decodes the JSON body into result.
func (a *APIService) GetJSON(ctx context.Context, path string, query url.Values, result any) (*APIResponse, error) {
	resp, err := a.Get(ctx, path, query)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func statusError(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	msg := apiErrorMessage(body)
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: status %d: %s", shared.ErrDatasetNotFound, code, msg)
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d: %s", shared.ErrServiceUnavailable, code, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, code, msg)
	}
}

// apiErrorMessage extracts {"error": "..."} when present.
func apiErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}
