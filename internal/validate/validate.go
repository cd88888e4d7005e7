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

// Package validate provides input validation for incoming fatwa requests.
// It rejects requests with missing fields and questions that are not
// related to Islamic topics.
package validate

import (
	"errors"
	"strings"
)

var (
	// ErrMissingField is returned when the question or fiqh field is empty
	ErrMissingField = errors.New("question and fiqh are both required")
	// ErrOffTopic is returned when the question is not about an Islamic topic
	ErrOffTopic = errors.New("question is not related to Islamic topics")
)

// topicKeywords is the fixed allowlist used to decide whether a question
// is on topic. Matching is case-insensitive substring matching, so
// "Islamic" matches "islam".
var topicKeywords = []string{
	"islam", "quran", "hadith", "fiqh", "fatwa",
	"prayer", "fasting", "zakat", "hajj",
}

// Request checks a question/fiqh pair. It returns ErrMissingField if either
// field is empty after trimming whitespace, ErrOffTopic if the question
// contains none of the topic keywords, and nil otherwise.
func Request(question, fiqh string) error {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(fiqh) == "" {
		return ErrMissingField
	}
	if !isIslamicQuestion(question) {
		return ErrOffTopic
	}
	return nil
}

// isIslamicQuestion reports whether the question contains at least one
// topic keyword as a case-insensitive substring.
func isIslamicQuestion(question string) bool {
	lower := strings.ToLower(question)
	for _, keyword := range topicKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
