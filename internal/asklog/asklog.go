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

// Package asklog records answered questions for later review. It supports
// JSON-lines file storage and SQLite. Logging is best-effort: a failed
// write never fails the request that triggered it.
package asklog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	StorageTypeFile   = "file"
	StorageTypeSQLite = "sqlite"
)

// Entry is one answered-question record.
type Entry struct {
	ID        string        `json:"id"`
	Question  string        `json:"question"`
	Fiqh      string        `json:"fiqh"`
	Status    int           `json:"status"`
	Latency   time.Duration `json:"latency_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// Config holds configuration for ask logging.
type Config struct {
	StorageType string // StorageTypeFile or StorageTypeSQLite
	FilePath    string // Path for file storage
	DBPath      string // Path for SQLite storage
}

// Logger writes ask-log entries to the configured backend.
type Logger struct {
	config Config
	logger *zap.Logger
	db     *sql.DB
	mu     sync.Mutex
}

// NewLogger creates a new ask logger.
func NewLogger(config Config, logger *zap.Logger) (*Logger, error) {
	al := &Logger{
		config: config,
		logger: logger,
	}

	switch config.StorageType {
	case StorageTypeFile:
		if err := al.initFileStorage(); err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
	case StorageTypeSQLite:
		if err := al.initSQLiteStorage(); err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.StorageType)
	}

	return al, nil
}

func (al *Logger) initFileStorage() error {
	dir := filepath.Dir(al.config.FilePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create ask-log directory: %w", err)
	}
	return nil
}

func (al *Logger) initSQLiteStorage() error {
	dir := filepath.Dir(al.config.DBPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create ask-log database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", al.config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS ask_log (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		fiqh TEXT NOT NULL,
		status INTEGER NOT NULL,
		latency_ns INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);`
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create ask_log table: %w", err)
	}

	al.db = db
	return nil
}

// Record stores one entry. The ID and timestamp are filled in here.
func (al *Logger) Record(question, fiqh string, status int, latency time.Duration) {
	entry := Entry{
		ID:        uuid.NewString(),
		Question:  question,
		Fiqh:      fiqh,
		Status:    status,
		Latency:   latency,
		Timestamp: time.Now().UTC(),
	}

	var err error
	switch al.config.StorageType {
	case StorageTypeFile:
		err = al.writeFile(entry)
	case StorageTypeSQLite:
		err = al.writeSQLite(entry)
	}

	if err != nil {
		al.logger.Warn("Failed to record ask-log entry",
			zap.Error(err),
			zap.String("id", entry.ID),
		)
	}
}

func (al *Logger) writeFile(entry Entry) error {
	al.mu.Lock()
	defer al.mu.Unlock()

	file, err := os.OpenFile(al.config.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open ask-log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

func (al *Logger) writeSQLite(entry Entry) error {
	_, err := al.db.Exec(
		`INSERT INTO ask_log (id, question, fiqh, status, latency_ns, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Question, entry.Fiqh, entry.Status, int64(entry.Latency), entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// Close releases the storage backend.
func (al *Logger) Close() error {
	if al.db != nil {
		return al.db.Close()
	}
	return nil
}
