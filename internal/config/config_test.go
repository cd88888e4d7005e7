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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, `
gemini:
  apikey: test-gemini-key
hadith:
  apikey: test-hadith-key
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Gemini.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Quran.MaxResults)
	assert.Equal(t, 10, cfg.Hadith.MaxResults)
	assert.True(t, cfg.Enrichment.Enabled)
	assert.False(t, cfg.AskLog.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Contains(t, cfg.Gemini.Endpoint, "generativelanguage.googleapis.com")
}

func TestLoadMissingGeminiKey(t *testing.T) {
	path := writeConfigFile(t, `
hadith:
  apikey: test-hadith-key
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.apikey")
}

func TestLoadMissingHadithKeyWithEnrichmentDisabled(t *testing.T) {
	// The hadith key is only required when enrichment is on.
	path := writeConfigFile(t, `
gemini:
  apikey: test-gemini-key
enrichment:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Enrichment.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-gemini-key")
	t.Setenv("HADITH_API_KEY", "env-hadith-key")
	t.Setenv("PORT", "9090")

	path := writeConfigFile(t, `
gemini:
  apikey: file-gemini-key
hadith:
  apikey: file-hadith-key
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-gemini-key", cfg.Gemini.APIKey)
	assert.Equal(t, "env-hadith-key", cfg.Hadith.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfigFile(t, `
gemini:
  apikey: test-gemini-key
hadith:
  apikey: test-hadith-key
logging:
  level: verbose
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoadInvalidAskLogStorage(t *testing.T) {
	path := writeConfigFile(t, `
gemini:
  apikey: test-gemini-key
hadith:
  apikey: test-hadith-key
asklog:
  enabled: true
  storage_type: redis
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asklog.storage_type")
}

func TestMaskSensitiveValues(t *testing.T) {
	cfg := &Config{
		Gemini: GeminiConfig{APIKey: "AIzaSyExampleKey"},
		Hadith: HadithConfig{APIKey: "abc"},
	}

	masked := cfg.MaskSensitiveValues()

	assert.Equal(t, "AIza************", masked.Gemini.APIKey)
	assert.Equal(t, "***", masked.Hadith.APIKey)
	// The original is untouched.
	assert.Equal(t, "AIzaSyExampleKey", cfg.Gemini.APIKey)
}

func TestLoadWithOptionsSkipsValidation(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{ValidateRequired: false})
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}
