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

// Package health provides the health check endpoint for the service,
// aggregating per-dependency reachability checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// StatusHealthy represents healthy status
	StatusHealthy = "healthy"
	// StatusUnhealthy represents unhealthy status
	StatusUnhealthy = "unhealthy"
	// StatusDegraded represents degraded status
	StatusDegraded = "degraded"
	// DefaultTimeout is the default timeout for health checks
	DefaultTimeout = 5 * time.Second
)

// CheckResult represents the result of a single dependency check
type CheckResult struct {
	Status    string         `json:"status"`
	Latency   time.Duration  `json:"latency"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Response represents the complete health check response
type Response struct {
	Status       string                 `json:"status"`
	Service      string                 `json:"service"`
	Version      string                 `json:"version"`
	Uptime       time.Duration          `json:"uptime"`
	Dependencies map[string]CheckResult `json:"dependencies"`
	Timestamp    time.Time              `json:"timestamp"`
}

// Checker runs one dependency check
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckerFunc is a function adapter for the Checker interface
type CheckerFunc func(ctx context.Context) CheckResult

// Check implements the Checker interface
func (f CheckerFunc) Check(ctx context.Context) CheckResult {
	return f(ctx)
}

// Manager manages health checks for the service
type Manager struct {
	serviceName string
	version     string
	startTime   time.Time
	checkers    map[string]Checker
	timeout     time.Duration
	logger      *zap.Logger
}

// NewManager creates a new health check manager
func NewManager(serviceName, version string, logger *zap.Logger) *Manager {
	return &Manager{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		checkers:    make(map[string]Checker),
		timeout:     DefaultTimeout,
		logger:      logger,
	}
}

// SetTimeout sets the timeout for health checks
func (m *Manager) SetTimeout(timeout time.Duration) {
	m.timeout = timeout
}

// AddCheckerFunc adds a health checker function
func (m *Manager) AddCheckerFunc(name string, checkFunc func(ctx context.Context) CheckResult) {
	m.checkers[name] = CheckerFunc(checkFunc)
}

// Check performs all health checks and returns the aggregate result
func (m *Manager) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	dependencies := make(map[string]CheckResult)
	overallStatus := StatusHealthy

	for name, checker := range m.checkers {
		start := time.Now()
		result := checker.Check(ctx)
		result.Latency = time.Since(start)
		result.Timestamp = time.Now()

		dependencies[name] = result

		if result.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if result.Status == StatusDegraded && overallStatus != StatusUnhealthy {
			overallStatus = StatusDegraded
		}
	}

	return Response{
		Status:       overallStatus,
		Service:      m.serviceName,
		Version:      m.version,
		Uptime:       time.Since(m.startTime),
		Dependencies: dependencies,
		Timestamp:    time.Now(),
	}
}

// HTTPHandler returns an http.Handler serving the health check response.
// Unhealthy aggregates map to 503, everything else to 200.
func (m *Manager) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := m.Check(r.Context())

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			m.logger.Error("Failed to encode health response", zap.Error(err))
		}
	})
}
