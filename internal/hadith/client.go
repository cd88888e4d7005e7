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

// Package hadith provides a client for the hadith lookup API. The upstream
// endpoint only serves a random hadith; the keyword is sent but ignored
// server-side, so results are not topic-relevant. One call is made per
// keyword, unlike the batched Quran search. Both quirks are upstream
// behavior and are kept as-is.
package hadith

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMaxResults caps how many hadith references are accumulated.
	DefaultMaxResults = 10
	// DefaultTimeout is the per-request timeout when none is configured.
	DefaultTimeout = 10 * time.Second

	// apiKeyHeader carries the upstream API key.
	apiKeyHeader = "X-API-Key"
)

// Reference is one hadith reference in the formatted answer.
type Reference struct {
	Book     string `json:"book"`
	Number   string `json:"number"`
	Narrator string `json:"narrator"`
	Arabic   string `json:"arabic"`
	English  string `json:"english"`
}

// Config holds the client configuration.
type Config struct {
	APIKey     string
	Endpoint   string
	MaxResults int
	Timeout    time.Duration
}

// Client calls the hadith lookup API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	titleCaser cases.Caser
}

// lookupResponse mirrors the subset of the lookup endpoint's body the
// service reads.
type lookupResponse struct {
	Data []struct {
		Book            string `json:"book"`
		HadithNumber    string `json:"hadithNumber"`
		EnglishNarrator string `json:"englishNarrator"`
		HadithArabic    string `json:"hadithArabic"`
		HadithEnglish   string `json:"hadithEnglish"`
	} `json:"data"`
}

// NewClient creates a new hadith lookup client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		titleCaser: cases.Title(language.English),
	}, nil
}

// Fetch issues one lookup per keyword, sequentially, and returns at most
// MaxResults accumulated references. The first transport or parse failure
// aborts with an error; the caller degrades it to a fail-soft list entry.
func (c *Client) Fetch(ctx context.Context, kws []string) ([]Reference, error) {
	refs := make([]Reference, 0, len(kws))
	for _, keyword := range kws {
		if len(refs) >= c.cfg.MaxResults {
			break
		}

		ref, err := c.lookupOne(ctx, keyword)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			refs = append(refs, *ref)
		}
	}

	c.logger.Info("Hadith lookup completed",
		zap.Int("keywords", len(kws)),
		zap.Int("returned", len(refs)),
	)

	return refs, nil
}

// lookupOne fetches a single hadith. The keyword is passed as a query
// parameter even though the endpoint ignores it.
func (c *Client) lookupOne(ctx context.Context, keyword string) (*Reference, error) {
	endpoint := c.cfg.Endpoint + "?keyword=" + url.QueryEscape(keyword)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	c.logger.Debug("Fetching hadith", zap.String("keyword", keyword))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Hadith lookup request failed", zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Hadith lookup returned non-2xx status",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	var parsed lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Error("Failed to decode hadith lookup response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Data) == 0 {
		return nil, nil
	}

	first := parsed.Data[0]
	return &Reference{
		Book:     c.titleCaser.String(first.Book),
		Number:   first.HadithNumber,
		Narrator: first.EnglishNarrator,
		Arabic:   first.HadithArabic,
		English:  first.HadithEnglish,
	}, nil
}

// ErrorReference builds the single fail-soft entry shown in place of the
// reference list when the lookup fails.
func ErrorReference(err error) []Reference {
	return []Reference{{
		Book:    "N/A",
		Number:  "N/A",
		English: fmt.Sprintf("Error fetching Hadith references: %v", err),
	}}
}
