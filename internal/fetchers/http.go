package fetchers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tallychart/internal/models"
)

// HTTPProvider fetches the tally document from a URL
type HTTPProvider struct {
	client *resty.Client
	url    string
}

// NewHTTPProvider creates an HTTP provider with the default timeout and retries
func NewHTTPProvider(url string) *HTTPProvider {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)

	return NewHTTPProviderWithClient(client, url)
}

// NewHTTPProviderWithClient creates an HTTP provider around an existing client
func NewHTTPProviderWithClient(client *resty.Client, url string) *HTTPProvider {
	return &HTTPProvider{
		client: client,
		url:    url,
	}
}

// SetTimeout overrides the request timeout
func (p *HTTPProvider) SetTimeout(d time.Duration) {
	p.client.SetTimeout(d)
}

// Name returns the provider name
func (p *HTTPProvider) Name() string { return "http" }

// Fetch downloads and parses the document. YAML is accepted when the server
// labels it so; anything else is parsed as JSON.
func (p *HTTPProvider) Fetch(ctx context.Context) (*models.IssueDataset, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json, application/yaml;q=0.9").
		Get(p.url)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset from %s: %w", p.url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("dataset source %s returned status %d", p.url, resp.StatusCode())
	}

	if strings.Contains(resp.Header().Get("Content-Type"), "yaml") {
		return decodeYAML(resp.Body())
	}
	return decodeJSON(resp.Body())
}
