package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

// DatasetsOptions configures a [DatasetsService].
type DatasetsOptions struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Client            *http.Client
}

// DatasetsService reads split statistics from the datasets-server API.
//
// Every request waits on a token-bucket limiter so a long harvest stays within the API's quota.
type DatasetsService struct {
	api     *APIService
	limiter *rate.Limiter
}

// NewDatasetsService creates a datasets-server client. A non-positive rate disables throttling.
func NewDatasetsService(opts DatasetsOptions) *DatasetsService {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://datasets-server.huggingface.co"
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &DatasetsService{
		api:     NewAPIService(strings.TrimRight(opts.BaseURL, "/"), authClient(opts.Client, opts.Token, opts.Timeout)),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (d *DatasetsService) Name() string {
	return "datasets-server"
}

type splitEntry struct {
	Name        string `json:"name"`
	NumExamples int    `json:"num_examples"`
}

type configInfo struct {
	ConfigName string                `json:"config_name"`
	Splits     map[string]splitEntry `json:"splits"`
}

type infoResponse struct {
	DatasetInfo json.RawMessage `json:"dataset_info"`
}

type splitsResponse struct {
	Splits []struct {
		Dataset string `json:"dataset"`
		Config  string `json:"config"`
		Split   string `json:"split"`
	} `json:"splits"`
}

// GetBuilderInfo implements [StatsProvider].
//
// Without a config the API describes every config at once; the one named "default" is used,
// else the only one, else the first by name.
func (d *DatasetsService) GetBuilderInfo(ctx context.Context, identifier, config string) (*models.BuilderInfo, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{"dataset": {identifier}}
	if config != "" {
		query.Set("config", config)
	}

	var payload infoResponse
	if _, err := d.api.GetJSON(ctx, "/info", query, &payload); err != nil {
		return nil, fmt.Errorf("failed to get info for %s: %w", identifier, err)
	}

	info, err := selectConfig(payload.DatasetInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to decode info for %s: %w", identifier, err)
	}
	return toBuilderInfo(info), nil
}

// GetConfigNames implements [StatsProvider]; names are deduplicated in first-seen order.
func (d *DatasetsService) GetConfigNames(ctx context.Context, identifier string) ([]string, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}

	var payload splitsResponse
	if _, err := d.api.GetJSON(ctx, "/splits", url.Values{"dataset": {identifier}}, &payload); err != nil {
		return nil, fmt.Errorf("failed to get configs for %s: %w", identifier, err)
	}

	seen := make(map[string]struct{})
	configs := []string{}
	for _, s := range payload.Splits {
		if _, ok := seen[s.Config]; ok {
			continue
		}
		seen[s.Config] = struct{}{}
		configs = append(configs, s.Config)
	}
	return configs, nil
}

// wait blocks on the limiter. Cancellation surfaces as the context's own error.
func (d *DatasetsService) wait(ctx context.Context) error {
	if err := d.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}

func selectConfig(raw json.RawMessage) (configInfo, error) {
	var single configInfo
	if len(raw) == 0 {
		return single, fmt.Errorf("%w: missing dataset_info", shared.ErrAPIRequest)
	}
	if err := json.Unmarshal(raw, &single); err == nil && single.Splits != nil {
		return single, nil
	}

	var all map[string]configInfo
	if err := json.Unmarshal(raw, &all); err != nil {
		return single, err
	}
	if len(all) == 0 {
		return single, fmt.Errorf("%w: no configs in dataset_info", shared.ErrNoConfigs)
	}
	if info, ok := all["default"]; ok {
		return info, nil
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return all[names[0]], nil
}

// toBuilderInfo orders splits by name so summaries and logs are stable.
func toBuilderInfo(info configInfo) *models.BuilderInfo {
	names := make([]string, 0, len(info.Splits))
	for key := range info.Splits {
		names = append(names, key)
	}
	sort.Strings(names)

	out := &models.BuilderInfo{Splits: make([]models.SplitInfo, 0, len(names))}
	for _, key := range names {
		s := info.Splits[key]
		name := s.Name
		if name == "" {
			name = key
		}
		out.Splits = append(out.Splits, models.SplitInfo{Name: name, NumExamples: s.NumExamples})
	}
	return out
}
