package mapclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the default timeout for backend requests. Map generation
// waits on an LLM call server-side, so this is generous.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error response body is kept in messages.
const maxErrorBody = 200

// HTTPClient implements Client against the knowledge-map backend HTTP API.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

// NewHTTPClient creates an HTTPClient for the backend at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpc:   &http.Client{},
		timeout: DefaultTimeout,
	}
}

// WithTimeout returns a new HTTPClient with the specified per-request timeout.
func (c *HTTPClient) WithTimeout(d time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: c.baseURL,
		httpc:   c.httpc,
		timeout: d,
	}
}

// GenerateMap requests a knowledge tree for the given concept.
func (c *HTTPClient) GenerateMap(ctx context.Context, concept string) (*ConceptNode, error) {
	if concept == "" {
		return nil, fmt.Errorf("empty concept")
	}

	body := struct {
		Concept string `json:"concept"`
	}{Concept: concept}

	var tree ConceptNode
	if err := c.post(ctx, "/api/knowledge-map", body, &tree); err != nil {
		return nil, fmt.Errorf("generate map for %q: %w", concept, err)
	}

	if _, err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("generate map for %q: invalid tree: %w", concept, err)
	}

	return &tree, nil
}

// ExplainConcept requests an explanation for one node of the tree.
func (c *HTTPClient) ExplainConcept(ctx context.Context, req ExplainRequest) (string, error) {
	var resp struct {
		Explanation string `json:"explanation"`
	}
	if err := c.post(ctx, "/api/explain-concept", req, &resp); err != nil {
		return "", fmt.Errorf("explain %q: %w", req.ConceptName, err)
	}
	return resp.Explanation, nil
}

// ChatAboutExplanation sends a follow-up question about an explanation.
func (c *HTTPClient) ChatAboutExplanation(ctx context.Context, req ChatRequest) (string, error) {
	var resp struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, "/api/chat-about-explanation", req, &resp); err != nil {
		return "", fmt.Errorf("chat about %q: %w", req.ConceptName, err)
	}
	return resp.Response, nil
}

// SendMessage sends a free-text message and returns the reply.
func (c *HTTPClient) SendMessage(ctx context.Context, text string) (string, error) {
	body := struct {
		Text string `json:"text"`
	}{Text: text}

	var resp struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, "/api/message", body, &resp); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return resp.Response, nil
}

// post issues a JSON POST to path and decodes the response into out.
func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("backend returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// Verify HTTPClient implements Client interface.
var _ Client = (*HTTPClient)(nil)
