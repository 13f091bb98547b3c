package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

// RapidChatClient posts prompts to a RapidAPI-hosted conversational
// endpoint. The raw response body is returned untouched; the chat relay
// extracts usable text from whichever shape the provider happens to use.
type RapidChatClient struct {
	name     string
	apiKey   string
	endpoint string
	host     string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewRapidChatClient creates the client for a given endpoint URL. The
// X-RapidAPI-Host header is derived from the endpoint host.
func NewRapidChatClient(client *http.Client, apiKey, endpoint string) *RapidChatClient {
	host := ""
	if u, err := url.Parse(endpoint); err == nil {
		host = u.Host
	}
	return &RapidChatClient{
		name:     "rapidchat",
		apiKey:   apiKey,
		endpoint: endpoint,
		host:     host,
		httpCfg: HTTPClientConfig{
			Client: client,
			// Conversational calls are slow and expensive; one attempt.
			Backoff: BackoffConfig{MaxRetries: 0, InitialInterval: defaultHTTPConfig(client).Backoff.InitialInterval},
		},
		circuit: newBreaker("rapidchat"),
	}
}

func (c *RapidChatClient) Name() string {
	return c.name
}

// Endpoint returns the configured upstream URL, used by the
// connectivity diagnostics endpoint.
func (c *RapidChatClient) Endpoint() string {
	return c.endpoint
}

// Complete submits a single-turn prompt and returns the raw response
// body. Upstream non-2xx statuses surface as *StatusError so the relay
// can pick the matching apology.
func (c *RapidChatClient) Complete(ctx context.Context, prompt string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("rapidapi key is not configured")
	}

	body, err := json.Marshal(map[string]string{"query": prompt})
	if err != nil {
		return nil, err
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		if c.host != "" {
			req.Header.Set("X-RapidAPI-Host", c.host)
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.name, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading rapidchat response body: %w", err)
	}
	return raw, nil
}
