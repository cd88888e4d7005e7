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

// Package keywords extracts search terms from a question for the
// scripture reference lookups.
package keywords

import "strings"

// MaxKeywords caps how many keywords are extracted from a question.
const MaxKeywords = 2

// minTokenLength is the exclusive lower bound on kept token length.
const minTokenLength = 3

// stopwords are common question words that carry no search value.
var stopwords = map[string]struct{}{
	"what": {}, "is": {}, "the": {}, "a": {}, "an": {}, "in": {}, "on": {},
	"of": {}, "to": {}, "for": {}, "and": {}, "or": {}, "are": {}, "was": {},
	"were": {}, "it": {}, "this": {}, "that": {}, "with": {}, "about": {},
	"how": {}, "when": {}, "can": {}, "does": {}, "do": {}, "should": {},
	"would": {}, "could": {}, "there": {}, "their": {}, "i": {}, "my": {},
	"me": {}, "we": {}, "you": {}, "your": {},
}

// punctCutset covers trailing and leading punctuation on tokens.
const punctCutset = `.,?!;:"'()[]`

// Extract lowercases the question, splits it on whitespace, drops stopwords
// and tokens of three characters or fewer, and returns at most MaxKeywords
// surviving tokens in their original order. An empty result is possible and
// left to the caller to handle.
func Extract(question string) []string {
	var kept []string
	for _, token := range strings.Fields(strings.ToLower(question)) {
		token = strings.Trim(token, punctCutset)
		if len(token) <= minTokenLength {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		kept = append(kept, token)
		if len(kept) == MaxKeywords {
			break
		}
	}
	return kept
}
