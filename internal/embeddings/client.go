// Package embeddings implements the thin RAG facility's outbound side: a
// client for the embedding model that search_codebase, search_docs, and
// index_file call to turn text into vectors before it ever reaches the
// Store's brute-force cosine scan.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultModel = "text-embedding-3-small"
const apiURL = "https://api.openai.com/v1/embeddings"

// Client embeds text against OPENAI_API_KEY. A nil/empty apiKey makes every
// call fail with ErrNotConfigured rather than silently no-op, so callers can
// surface a clear 503 (per SPEC_FULL.md §6's NotConfigured status).
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
}

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = fmt.Errorf("embeddings: OPENAI_API_KEY is not configured")

// New constructs a Client. apiKey is typically config.EnvConfig.OpenAIAPIKey.
func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		model:      defaultModel,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input string, in order. It retries outbound
// HTTP failures with a bounded exponential backoff (1s/2s/4s, per
// SPEC_FULL.md §5), and only on 5xx responses — a 4xx (bad key, bad request)
// is never retried.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 4 * time.Second
	b.MaxElapsedTime = 9 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0

	var parsed embedResponse
	err = backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err // network errors are transient, retry
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("embedding API returned %d: %s", resp.StatusCode, string(respBody))
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("embedding API returned %d: %s", resp.StatusCode, string(respBody)))
		}

		return json.Unmarshal(respBody, &parsed)
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get embeddings: %w", err)
	}

	vectors := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
