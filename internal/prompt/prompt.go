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

// Package prompt builds the instruction prompt sent to the language model.
package prompt

import "fmt"

const fatwaTemplate = "You are an Islamic scholar specializing in %s Fiqh. " +
	"Answer this question: '%s' based on the Quran, Hadith, and %s-specific books. " +
	"Provide references with narrators, authors, and dates where possible. " +
	"Use **bold** markers to emphasize key terms and rulings."

// BuildFatwaPrompt embeds the question and fiqh school into the fixed
// instructional template. Validation is the caller's responsibility.
func BuildFatwaPrompt(question, fiqh string) string {
	return fmt.Sprintf(fatwaTemplate, fiqh, question, fiqh)
}
