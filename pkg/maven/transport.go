package maven

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher with TLS 1.2+ and the given timeout
func NewRealHTTPFetcher(timeout time.Duration) HTTPFetcher {
	return &RealHTTPFetcher{client: &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}}
}

func (f *RealHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// MockHTTPFetcher simulates HTTP responses for testing. It is safe for
// concurrent use.
type MockHTTPFetcher struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	errors    map[string]error
	// Requests records every URL requested, in order.
	Requests []string
}

type mockResponse struct {
	status int
	body   string
}

// NewMockHTTPFetcher creates a mock HTTP fetcher
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string]mockResponse),
		errors:    make(map[string]error),
	}
}

// AddResponse registers a mock response for a URL
func (m *MockHTTPFetcher) AddResponse(urlStr string, statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[urlStr] = mockResponse{status: statusCode, body: body}
}

// AddError registers a mock error for a URL
func (m *MockHTTPFetcher) AddError(urlStr string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[urlStr] = err
}

func (m *MockHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	urlStr := req.URL.String()
	m.Requests = append(m.Requests, urlStr)
	if err, ok := m.errors[urlStr]; ok {
		return nil, err
	}
	parsed, _ := url.Parse(urlStr)
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("Not Found")),
		Header:     make(http.Header),
		Request:    &http.Request{URL: parsed},
	}
	if r, ok := m.responses[urlStr]; ok {
		resp.StatusCode = r.status
		resp.Body = io.NopCloser(strings.NewReader(r.body))
	}
	return resp, nil
}
