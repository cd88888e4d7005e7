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

package hadith

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleBody = `{
	"data": [
		{
			"book": "sahih bukhari",
			"hadithNumber": "52",
			"englishNarrator": "Narrated An-Nu'man bin Bashir",
			"hadithArabic": "الحلال بين والحرام بين",
			"hadithEnglish": "The lawful is clear and the unlawful is clear."
		}
	]
}`

func newTestClient(t *testing.T, maxResults int, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:     "test-key",
		Endpoint:   server.URL,
		MaxResults: maxResults,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestFetchOneCallPerKeyword(t *testing.T) {
	var keywords []string
	client := newTestClient(t, 10, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		keywords = append(keywords, r.URL.Query().Get("keyword"))
		_, _ = w.Write([]byte(sampleBody))
	})

	refs, err := client.Fetch(context.Background(), []string{"ruling", "fasting"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ruling", "fasting"}, keywords)
	require.Len(t, refs, 2)
	assert.Equal(t, "Sahih Bukhari", refs[0].Book)
	assert.Equal(t, "52", refs[0].Number)
	assert.Equal(t, "Narrated An-Nu'man bin Bashir", refs[0].Narrator)
	assert.Equal(t, "The lawful is clear and the unlawful is clear.", refs[0].English)
}

func TestFetchStopsAtMaxResults(t *testing.T) {
	calls := 0
	client := newTestClient(t, 1, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(sampleBody))
	})

	refs, err := client.Fetch(context.Background(), []string{"ruling", "fasting"})
	require.NoError(t, err)

	assert.Len(t, refs, 1)
	assert.Equal(t, 1, calls)
}

func TestFetchEmptyUpstreamData(t *testing.T) {
	client := newTestClient(t, 10, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	refs, err := client.Fetch(context.Background(), []string{"ruling"})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestFetchNoKeywords(t *testing.T) {
	client := newTestClient(t, 10, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no call expected without keywords")
	})

	refs, err := client.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestFetchNon2xxStatus(t *testing.T) {
	client := newTestClient(t, 10, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	_, err := client.Fetch(context.Background(), []string{"ruling"})
	assert.Error(t, err)
}

func TestFetchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(Config{
		APIKey:   "test-key",
		Endpoint: server.URL,
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), []string{"ruling"})
	assert.Error(t, err)
}

func TestErrorReference(t *testing.T) {
	refs := ErrorReference(fmt.Errorf("timeout"))

	require.Len(t, refs, 1)
	assert.Equal(t, "N/A", refs[0].Book)
	assert.Contains(t, refs[0].English, "Error fetching Hadith references: timeout")
}
