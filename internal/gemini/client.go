// Copyright 2025 Fatwa Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gemini provides a client for the Google generative-language API.
// The client issues a single blocking request per prompt with no retries;
// upstream failures are returned as errors and mapped to response content
// at the HTTP boundary by the caller.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// NoResponsePlaceholder is returned as the answer when the API responds
// successfully but the candidate text is missing from the body.
const NoResponsePlaceholder = "No response text received"

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 10 * time.Second

// Config holds the client configuration.
type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// Client calls the generative-language API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// generateRequest mirrors the generateContent request body.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse mirrors the subset of the generateContent response
// the service reads.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewClient creates a new Gemini client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// GenerateAnswer sends the prompt to the generateContent endpoint and
// returns the first candidate's text. Transport failures, non-2xx statuses
// and unparseable bodies are returned as errors. A 2xx body with no
// candidate text yields NoResponsePlaceholder with a nil error.
func (c *Client) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.cfg.Endpoint + "?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Sending generateContent request",
		zap.Int("prompt_length", len(prompt)),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("generateContent request failed", zap.Error(err))
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("generateContent returned non-2xx status",
			zap.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Error("Failed to decode generateContent response", zap.Error(err))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := firstCandidateText(parsed)
	if text == "" {
		c.logger.Warn("generateContent response contained no candidate text")
		text = NoResponsePlaceholder
	}

	c.logger.Info("generateContent completed",
		zap.Int("answer_length", len(text)),
		zap.Duration("latency", time.Since(start)),
	)

	return text, nil
}

// firstCandidateText extracts candidates[0].content.parts[0].text, or ""
// when any level is absent.
func firstCandidateText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
