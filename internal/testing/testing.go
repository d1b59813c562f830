// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/mtcat/internal/models"
)

// FakeRegistry is a test double for [services.Registry]
type FakeRegistry struct {
	Records []models.RawDatasetRecord
	Err     error
	Filters []string
}

func (f *FakeRegistry) ListDatasets(ctx context.Context, filter string) ([]models.RawDatasetRecord, error) {
	f.Filters = append(f.Filters, filter)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Records, nil
}

func (f *FakeRegistry) Name() string { return "fake registry" }

// ProviderCall records one request made to a [ScriptedProvider]
type ProviderCall struct {
	Method     string
	Identifier string
	Config     string
}

// ScriptedProvider is a test double for [services.StatsProvider] that answers from fixed tables.
//
// Unknown identifiers fail with [ErrUnscripted]. OnCall, when set, runs before every answer
// and may return an error to inject (e.g. to cancel a context mid-run).
type ScriptedProvider struct {
	Infos       map[string]*models.BuilderInfo // keyed by InfoKey(identifier, config)
	Configs     map[string][]string
	InfoErrors  map[string]error
	ConfigError map[string]error
	OnCall      func(call ProviderCall) error

	mu    sync.Mutex
	Calls []ProviderCall
}

// ErrUnscripted is returned for requests a [ScriptedProvider] has no answer for
var ErrUnscripted = errors.New("unscripted request")

// InfoKey builds the Infos/InfoErrors key for an identifier and config
func InfoKey(identifier, config string) string {
	if config == "" {
		return identifier
	}
	return identifier + "|" + config
}

func (p *ScriptedProvider) record(call ProviderCall) error {
	p.mu.Lock()
	p.Calls = append(p.Calls, call)
	p.mu.Unlock()
	if p.OnCall != nil {
		return p.OnCall(call)
	}
	return nil
}

func (p *ScriptedProvider) GetBuilderInfo(ctx context.Context, identifier, config string) (*models.BuilderInfo, error) {
	if err := p.record(ProviderCall{Method: "GetBuilderInfo", Identifier: identifier, Config: config}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := InfoKey(identifier, config)
	if err, ok := p.InfoErrors[key]; ok {
		return nil, err
	}
	if info, ok := p.Infos[key]; ok {
		return info, nil
	}
	return nil, ErrUnscripted
}

func (p *ScriptedProvider) GetConfigNames(ctx context.Context, identifier string) ([]string, error) {
	if err := p.record(ProviderCall{Method: "GetConfigNames", Identifier: identifier}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := p.ConfigError[identifier]; ok {
		return nil, err
	}
	if configs, ok := p.Configs[identifier]; ok {
		return configs, nil
	}
	return nil, ErrUnscripted
}

func (p *ScriptedProvider) Name() string { return "scripted provider" }

// CallCount returns the number of recorded calls to method
func (p *ScriptedProvider) CallCount(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Splits builds a [models.BuilderInfo] from alternating split names and counts
func Splits(kv ...any) *models.BuilderInfo {
	info := &models.BuilderInfo{}
	for i := 0; i+1 < len(kv); i += 2 {
		info.Splits = append(info.Splits, models.SplitInfo{Name: kv[i].(string), NumExamples: kv[i+1].(int)})
	}
	return info
}

// MemoryLedger is an in-memory missing-items ledger
type MemoryLedger struct {
	Streams map[models.LedgerStream][]string
	Err     error
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{Streams: make(map[models.LedgerStream][]string)}
}

func (m *MemoryLedger) Append(stream models.LedgerStream, identifier string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Streams[stream] = append(m.Streams[stream], identifier)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
