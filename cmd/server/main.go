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

// Package main provides the fatwa assistant web service. It accepts a
// question plus a fiqh school selector, forwards a constructed prompt to
// the Gemini API, enriches the answer with Quran and Hadith references,
// and returns an HTML-formatted composite answer.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/your-org/fatwa-assistant/internal/asklog"
	"github.com/your-org/fatwa-assistant/internal/config"
	"github.com/your-org/fatwa-assistant/internal/format"
	"github.com/your-org/fatwa-assistant/internal/gemini"
	"github.com/your-org/fatwa-assistant/internal/hadith"
	"github.com/your-org/fatwa-assistant/internal/health"
	"github.com/your-org/fatwa-assistant/internal/keywords"
	"github.com/your-org/fatwa-assistant/internal/prompt"
	"github.com/your-org/fatwa-assistant/internal/quran"
	"github.com/your-org/fatwa-assistant/internal/validate"
)

const (
	// ServiceVersion is reported by the health endpoint
	ServiceVersion = "1.0.0"
	// healthCheckTimeout is the timeout for health check requests
	healthCheckTimeout = 5 * time.Second

	missingFieldMessage = "Please provide both a question and a Fiqh selection."
	offTopicMessage     = "I can only assist with Islamic questions."
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	Fiqh     string `json:"fiqh"`
}

// AskResponse wraps the HTML fragment returned to the chat widget.
type AskResponse struct {
	Response string `json:"response"`
}

// answerGenerator produces the fatwa answer text for a prompt.
type answerGenerator interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// quranSearcher fetches Quran verse references for the extracted keywords.
type quranSearcher interface {
	Search(ctx context.Context, kws []string) ([]quran.Reference, error)
}

// hadithFetcher fetches hadith references for the extracted keywords.
type hadithFetcher interface {
	Fetch(ctx context.Context, kws []string) ([]hadith.Reference, error)
}

// FatwaService orchestrates the validate, prompt, generate, enrich and
// format pipeline. All state is request-local; the service itself only
// holds configuration and clients.
type FatwaService struct {
	logger     *zap.Logger
	llm        answerGenerator
	quran      quranSearcher
	hadith     hadithFetcher
	askLog     *asklog.Logger
	enrichment atomic.Bool
}

// NewFatwaService creates the service with its upstream clients.
func NewFatwaService(cfg *config.Config, logger *zap.Logger) (*FatwaService, error) {
	llmClient, err := gemini.NewClient(gemini.Config{
		APIKey:   cfg.Gemini.APIKey,
		Endpoint: cfg.Gemini.Endpoint,
		Timeout:  time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var quranClient quranSearcher
	var hadithClient hadithFetcher
	if cfg.Enrichment.Enabled {
		qc, err := quran.NewClient(quran.Config{
			Endpoint:   cfg.Quran.Endpoint,
			MaxResults: cfg.Quran.MaxResults,
			Timeout:    time.Duration(cfg.Quran.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Quran client: %w", err)
		}
		hc, err := hadith.NewClient(hadith.Config{
			APIKey:     cfg.Hadith.APIKey,
			Endpoint:   cfg.Hadith.Endpoint,
			MaxResults: cfg.Hadith.MaxResults,
			Timeout:    time.Duration(cfg.Hadith.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create hadith client: %w", err)
		}
		quranClient, hadithClient = qc, hc
	}

	var askLogger *asklog.Logger
	if cfg.AskLog.Enabled {
		askLogger, err = asklog.NewLogger(asklog.Config{
			StorageType: cfg.AskLog.StorageType,
			FilePath:    cfg.AskLog.FilePath,
			DBPath:      cfg.AskLog.DBPath,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create ask logger: %w", err)
		}
	}

	service := &FatwaService{
		logger: logger,
		llm:    llmClient,
		quran:  quranClient,
		hadith: hadithClient,
		askLog: askLogger,
	}
	service.enrichment.Store(cfg.Enrichment.Enabled)
	return service, nil
}

// SetEnrichment toggles reference enrichment. Used by config hot reload.
// Enrichment can only be enabled at runtime if the reference clients were
// built at startup.
func (s *FatwaService) SetEnrichment(enabled bool) {
	if enabled && (s.quran == nil || s.hadith == nil) {
		s.logger.Warn("Cannot enable enrichment at runtime: reference clients not configured")
		return
	}
	s.enrichment.Store(enabled)
}

// handleAsk processes a fatwa request. The pipeline is strictly linear;
// reference-fetch failures degrade that section's content while Gemini
// failure is the sole case that aborts with a 500.
func (s *FatwaService) handleAsk(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AskResponse{
			Response: format.Paragraph(missingFieldMessage),
		})
		return
	}

	respond := func(status int, html string) {
		c.JSON(status, AskResponse{Response: html})
		if s.askLog != nil {
			s.askLog.Record(req.Question, req.Fiqh, status, time.Since(start))
		}
	}

	if err := validate.Request(req.Question, req.Fiqh); err != nil {
		message := missingFieldMessage
		if errors.Is(err, validate.ErrOffTopic) {
			message = offTopicMessage
		}
		s.logger.Debug("Rejected fatwa request",
			zap.Error(err),
			zap.String("fiqh", req.Fiqh),
		)
		respond(http.StatusBadRequest, format.Paragraph(message))
		return
	}

	answer, err := s.llm.GenerateAnswer(ctx, prompt.BuildFatwaPrompt(req.Question, req.Fiqh))
	if err != nil {
		s.logger.Error("Gemini call failed", zap.Error(err))
		respond(http.StatusInternalServerError,
			format.Paragraph(fmt.Sprintf("Error fetching response: %v", err)))
		return
	}

	if !s.enrichment.Load() {
		respond(http.StatusOK, format.BoldTerms(answer))
		return
	}

	kws := keywords.Extract(req.Question)

	quranRefs, err := s.quran.Search(ctx, kws)
	if err != nil {
		s.logger.Warn("Quran search failed, degrading to placeholder entry", zap.Error(err))
		quranRefs = quran.ErrorReference(err)
	}

	hadithRefs, err := s.hadith.Fetch(ctx, kws)
	if err != nil {
		s.logger.Warn("Hadith lookup failed, degrading to placeholder entry", zap.Error(err))
		hadithRefs = hadith.ErrorReference(err)
	}

	s.logger.Info("Fatwa request completed",
		zap.String("fiqh", req.Fiqh),
		zap.Strings("keywords", kws),
		zap.Int("quran_refs", len(quranRefs)),
		zap.Int("hadith_refs", len(hadithRefs)),
		zap.Duration("latency", time.Since(start)),
	)

	respond(http.StatusOK, format.FatwaResponse(req.Question, req.Fiqh, answer, quranRefs, hadithRefs))
}

// handleHomePage serves the chat widget.
func (s *FatwaService) handleHomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "Fatwa Assistant",
	})
}

// setupHealthChecks registers per-upstream reachability checks.
func (s *FatwaService) setupHealthChecks(manager *health.Manager, cfg *config.Config) {
	manager.AddCheckerFunc("gemini", func(_ context.Context) health.CheckResult {
		if cfg.Gemini.APIKey == "" {
			return health.CheckResult{
				Status: health.StatusUnhealthy,
				Error:  "Gemini API key not configured",
			}
		}
		return health.CheckResult{
			Status:   health.StatusHealthy,
			Metadata: map[string]any{"endpoint": cfg.Gemini.Endpoint},
		}
	})

	if cfg.Enrichment.Enabled {
		manager.AddCheckerFunc("quran", reachabilityCheck(cfg.Quran.Endpoint))
		manager.AddCheckerFunc("hadith", reachabilityCheck(cfg.Hadith.Endpoint))
	}

	manager.SetTimeout(healthCheckTimeout)
}

// reachabilityCheck reports healthy when the endpoint answers any HTTP
// status and degraded on transport failure. Reference-fetch failures only
// degrade response content, so a dead reference API never makes the
// service unhealthy.
func reachabilityCheck(endpoint string) func(ctx context.Context) health.CheckResult {
	client := &http.Client{Timeout: healthCheckTimeout}
	return func(ctx context.Context) health.CheckResult {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return health.CheckResult{Status: health.StatusDegraded, Error: err.Error()}
		}
		resp, err := client.Do(req)
		if err != nil {
			return health.CheckResult{Status: health.StatusDegraded, Error: err.Error()}
		}
		_ = resp.Body.Close()
		return health.CheckResult{
			Status:   health.StatusHealthy,
			Metadata: map[string]any{"endpoint": endpoint},
		}
	}
}

// requestLogger logs one structured line per request with a request ID.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		c.Next()

		logger.Info("Request handled",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// buildLogger constructs the zap logger from the logging configuration.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func main() {
	// Mirror the original deployment: secrets may come from a .env file.
	_ = godotenv.Load()

	bootLogger, _ := zap.NewProduction()
	defer func() { _ = bootLogger.Sync() }()

	cfg, err := config.Load("")
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		bootLogger.Fatal("Failed to build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	service, err := NewFatwaService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create fatwa service", zap.Error(err))
	}
	if service.askLog != nil {
		defer func() { _ = service.askLog.Close() }()
	}

	// Enrichment can be toggled without a restart.
	if err := config.WatchConfig("", func(newCfg *config.Config) {
		logger.Info("Configuration reloaded",
			zap.Bool("enrichment_enabled", newCfg.Enrichment.Enabled),
		)
		service.SetEnrichment(newCfg.Enrichment.Enabled)
	}); err != nil {
		logger.Warn("Config hot reload unavailable", zap.Error(err))
	}

	healthManager := health.NewManager("fatwa-assistant", ServiceVersion, logger)
	service.setupHealthChecks(healthManager, cfg)

	router := gin.New()
	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())
	router.LoadHTMLGlob("templates/*")

	router.GET("/", service.handleHomePage)
	router.GET("/health", gin.WrapH(healthManager.HTTPHandler()))
	router.POST("/ask", service.handleAsk)

	masked := cfg.MaskSensitiveValues()
	logger.Info("Starting fatwa assistant",
		zap.String("port", cfg.Server.Port),
		zap.Bool("enrichment_enabled", cfg.Enrichment.Enabled),
		zap.Bool("asklog_enabled", cfg.AskLog.Enabled),
		zap.String("gemini_key", masked.Gemini.APIKey),
	)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
