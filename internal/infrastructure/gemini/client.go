package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ngo-connect-api/internal/config"
)

// Generator is the upstream LLM surface the rewrite service depends on.
type Generator interface {
	// Configured reports whether an API credential is available at all.
	Configured() bool
	// GenerateContent runs one prompt against the upstream API and returns
	// the raw response. A nil error does NOT imply a 2xx status; callers
	// must inspect Response.StatusCode. A non-nil error means no endpoint
	// variant produced any HTTP response (transport failure or timeout).
	GenerateContent(ctx context.Context, prompt string) (*Response, error)
}

// Response is the raw outcome of one upstream call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client calls the Google Generative Language REST API. The v1 endpoint is
// tried first; a 404 (unknown model/API version) falls through to v1beta.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoints  []string
	timeout    time.Duration
}

const maxErrorSnippet = 200

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		endpoints: []string{
			"https://generativelanguage.googleapis.com/v1",
			"https://generativelanguage.googleapis.com/v1beta",
		},
		timeout: 15 * time.Second,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

func (c *Client) GenerateContent(ctx context.Context, prompt string) (*Response, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// One deadline covers every endpoint variant.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		lastErrText string
		lastResp    *Response
	)
	for _, base := range c.endpoints {
		url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, c.model, c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErrText = err.Error()
			lastResp = nil
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErrText = err.Error()
			lastResp = nil
			continue
		}

		// 404 means this API version doesn't know the model; try the next one.
		// The response is kept so a 404 from the final variant still surfaces
		// as an upstream error rather than a transport failure.
		if resp.StatusCode == http.StatusNotFound {
			lastErrText = snippet(respBody)
			lastResp = &Response{StatusCode: resp.StatusCode, Body: respBody}
			continue
		}

		return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("%s", lastErrText)
}

func snippet(b []byte) string {
	if len(b) > maxErrorSnippet {
		b = b[:maxErrorSnippet]
	}
	return string(b)
}
