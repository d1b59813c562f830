package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/mtcat/internal/models"
)

// HubOptions configures a [HubService].
type HubOptions struct {
	BaseURL  string
	Token    string
	PageSize int
	Timeout  time.Duration
	// Client is the base HTTP client; the bearer token, when set, is layered on top of it.
	Client *http.Client
}

// HubService lists datasets from the Hugging Face Hub API.
type HubService struct {
	api      *APIService
	pageSize int
}

// NewHubService creates a Hub client. Requests are authenticated when opts.Token is set.
func NewHubService(opts HubOptions) *HubService {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://huggingface.co"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}

	return &HubService{
		api:      NewAPIService(strings.TrimRight(opts.BaseURL, "/"), authClient(opts.Client, opts.Token, opts.Timeout)),
		pageSize: opts.PageSize,
	}
}

// authClient wraps base with a static bearer token source.
func authClient(base *http.Client, token string, timeout time.Duration) *http.Client {
	if base == nil {
		base = &http.Client{Timeout: timeout}
	}
	if token == "" {
		return base
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	client.Timeout = base.Timeout
	return client
}

func (h *HubService) Name() string {
	return "Hugging Face Hub"
}

// ListDatasets implements [Registry] by walking the Link rel="next" chain until exhausted.
func (h *HubService) ListDatasets(ctx context.Context, filter string) ([]models.RawDatasetRecord, error) {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	query.Set("full", "true")
	query.Set("limit", strconv.Itoa(h.pageSize))

	resp, err := h.api.Get(ctx, "/api/datasets", query)
	var records []models.RawDatasetRecord
	for page := 1; ; page++ {
		if err != nil {
			return nil, fmt.Errorf("failed to list datasets (page %d): %w", page, err)
		}

		var batch []models.RawDatasetRecord
		if err := json.Unmarshal(resp.Body, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode datasets page %d: %w", page, err)
		}
		records = append(records, batch...)

		next := nextLink(resp.Headers)
		if next == "" {
			break
		}
		resp, err = h.api.GetURL(ctx, next)
	}
	return records, nil
}

// nextLink returns the rel="next" target of an RFC 8288 Link header, or "".
func nextLink(header http.Header) string {
	for _, value := range header.Values("Link") {
		for _, link := range strings.Split(value, ",") {
			parts := strings.Split(link, ";")
			if len(parts) < 2 {
				continue
			}
			target := strings.TrimSpace(parts[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}
			for _, param := range parts[1:] {
				param = strings.ReplaceAll(strings.TrimSpace(param), " ", "")
				if param == `rel="next"` || param == "rel=next" {
					return target[1 : len(target)-1]
				}
			}
		}
	}
	return ""
}
