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

package quran

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

func newTestClient(t *testing.T, maxResults int, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		Endpoint:   server.URL,
		MaxResults: maxResults,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestSearchJoinsKeywordsIntoPath(t *testing.T) {
	var gotPath string
	client := newTestClient(t, 5, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"data": {"matches": []}}`))
	})

	refs, err := client.Search(context.Background(), []string{"ruling", "fasting"})
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Equal(t, "/search/ruling%20fasting/all/en", gotPath)
}

func TestSearchParsesMatches(t *testing.T) {
	client := newTestClient(t, 5, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {
				"matches": [
					{
						"text": "O you who believe, fasting is prescribed for you",
						"arabicText": "يَا أَيُّهَا الَّذِينَ آمَنُوا",
						"surah": {"englishName": "Al-Baqara"},
						"numberInSurah": 183
					},
					{
						"surah": {"englishName": "Al-Maaida"},
						"numberInSurah": 3
					}
				]
			}
		}`))
	})

	refs, err := client.Search(context.Background(), []string{"fasting"})
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "Al-Baqara", refs[0].Surah)
	assert.Equal(t, "183", refs[0].Ayah)
	assert.Equal(t, "O you who believe, fasting is prescribed for you", refs[0].English)

	// Missing fields fall back to placeholders.
	assert.Equal(t, TranslationPlaceholder, refs[1].English)
	assert.Equal(t, ArabicPlaceholder, refs[1].Arabic)
}

func TestSearchCapsResults(t *testing.T) {
	client := newTestClient(t, 5, func(w http.ResponseWriter, _ *http.Request) {
		body := `{"data": {"matches": [`
		for i := 0; i < 8; i++ {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"text": "verse %d", "surah": {"englishName": "S"}, "numberInSurah": %d}`, i, i+1)
		}
		body += `]}}`
		_, _ = w.Write([]byte(body))
	})

	refs, err := client.Search(context.Background(), []string{"prayer"})
	require.NoError(t, err)
	assert.Len(t, refs, 5)
}

func TestSearchNon2xxStatus(t *testing.T) {
	client := newTestClient(t, 5, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), []string{"zakat"})
	assert.Error(t, err)
}

func TestSearchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(Config{Endpoint: server.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Search(context.Background(), []string{"zakat"})
	assert.Error(t, err)
}

func TestErrorReference(t *testing.T) {
	refs := ErrorReference(fmt.Errorf("connection refused"))

	require.Len(t, refs, 1)
	assert.Equal(t, "N/A", refs[0].Surah)
	assert.Contains(t, refs[0].English, "Error fetching Quran references: connection refused")
}
