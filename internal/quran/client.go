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

// Package quran provides a client for the Quran verse search API. A single
// batched search is issued per request with the extracted keywords joined
// by a space.
package quran

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// TranslationPlaceholder is substituted when a match has no translation text.
	TranslationPlaceholder = "Translation unavailable"
	// ArabicPlaceholder is substituted when a match has no Arabic text.
	ArabicPlaceholder = "Arabic text unavailable"

	// DefaultMaxResults caps how many verse matches are returned.
	DefaultMaxResults = 5
	// DefaultTimeout is the per-request timeout when none is configured.
	DefaultTimeout = 10 * time.Second
)

// Reference is one Quran verse reference in the formatted answer.
type Reference struct {
	Surah   string `json:"surah"`
	Ayah    string `json:"ayah"`
	Arabic  string `json:"arabic"`
	English string `json:"english"`
}

// Config holds the client configuration.
type Config struct {
	Endpoint   string
	MaxResults int
	Timeout    time.Duration
}

// Client calls the verse search API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// searchResponse mirrors the subset of the search endpoint's body the
// service reads.
type searchResponse struct {
	Data struct {
		Matches []struct {
			Text       string `json:"text"`
			ArabicText string `json:"arabicText"`
			Surah      struct {
				EnglishName string `json:"englishName"`
			} `json:"surah"`
			NumberInSurah int `json:"numberInSurah"`
		} `json:"matches"`
	} `json:"data"`
}

// NewClient creates a new Quran search client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
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
	}, nil
}

// Search issues one verse search with the keywords joined by a space as the
// search term path segment and returns at most MaxResults references.
// Missing translation or Arabic fields are replaced by placeholders. An
// empty keyword list still issues the search with an empty term; the
// upstream then matches nothing.
func (c *Client) Search(ctx context.Context, kws []string) ([]Reference, error) {
	term := strings.Join(kws, " ")
	endpoint := fmt.Sprintf("%s/search/%s/all/en", c.cfg.Endpoint, url.PathEscape(term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.logger.Debug("Searching Quran verses", zap.String("term", term))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Quran search request failed", zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Quran search returned non-2xx status",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Error("Failed to decode Quran search response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	refs := make([]Reference, 0, c.cfg.MaxResults)
	for _, match := range parsed.Data.Matches {
		if len(refs) == c.cfg.MaxResults {
			break
		}

		english := match.Text
		if english == "" {
			english = TranslationPlaceholder
		}
		arabic := match.ArabicText
		if arabic == "" {
			arabic = ArabicPlaceholder
		}

		refs = append(refs, Reference{
			Surah:   match.Surah.EnglishName,
			Ayah:    strconv.Itoa(match.NumberInSurah),
			Arabic:  arabic,
			English: english,
		})
	}

	c.logger.Info("Quran search completed",
		zap.String("term", term),
		zap.Int("matches", len(parsed.Data.Matches)),
		zap.Int("returned", len(refs)),
	)

	return refs, nil
}

// ErrorReference builds the single fail-soft entry shown in place of the
// reference list when the search fails.
func ErrorReference(err error) []Reference {
	return []Reference{{
		Surah:   "N/A",
		Ayah:    "N/A",
		Arabic:  ArabicPlaceholder,
		English: fmt.Sprintf("Error fetching Quran references: %v", err),
	}}
}
