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

// Package format assembles the HTML fragment returned to the chat widget.
// Plain string concatenation is used on purpose; the fragment structure is
// fixed and small enough that a templating engine would add nothing.
package format

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/your-org/fatwa-assistant/internal/hadith"
	"github.com/your-org/fatwa-assistant/internal/quran"
)

// boldSpan matches markdown-style **bold** spans, non-greedy so adjacent
// spans do not merge.
var boldSpan = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Text converts markdown-style bold markers in the answer text to HTML
// strong tags.
func Text(answer string) string {
	return boldSpan.ReplaceAllString(answer, "<strong>$1</strong>")
}

// BoldTerms is the legacy formatting used when enrichment is disabled: it
// bold-wraps every literal occurrence of "Quran" and "Hadith" in the raw
// answer.
func BoldTerms(answer string) string {
	answer = strings.ReplaceAll(answer, "Quran", "<strong>Quran</strong>")
	answer = strings.ReplaceAll(answer, "Hadith", "<strong>Hadith</strong>")
	return answer
}

// FatwaResponse assembles the composite HTML fragment: a heading naming
// the fiqh school, the question, the bold-formatted answer, and the two
// reference lists. The lists are emitted even when empty.
func FatwaResponse(question, fiqh, answer string, quranRefs []quran.Reference, hadithRefs []hadith.Reference) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: Arial, sans-serif; line-height: 1.6;">`)
	fmt.Fprintf(&b, `<h3 style="color: #2c6e49;">Fatwa according to the %s school</h3>`, html.EscapeString(fiqh))
	fmt.Fprintf(&b, `<p><strong>Question:</strong> %s</p>`, html.EscapeString(question))
	fmt.Fprintf(&b, `<p>%s</p>`, Text(answer))

	b.WriteString(`<h4 style="color: #2c6e49;">Quran References</h4>`)
	b.WriteString(`<ul style="list-style-type: disc; padding-left: 20px;">`)
	for _, ref := range quranRefs {
		fmt.Fprintf(&b,
			`<li><strong>Surah %s, Ayah %s</strong><br>%s<br><em>%s</em></li>`,
			html.EscapeString(ref.Surah), html.EscapeString(ref.Ayah),
			html.EscapeString(ref.Arabic), html.EscapeString(ref.English))
	}
	b.WriteString(`</ul>`)

	b.WriteString(`<h4 style="color: #2c6e49;">Hadith References</h4>`)
	b.WriteString(`<ul style="list-style-type: disc; padding-left: 20px;">`)
	for _, ref := range hadithRefs {
		fmt.Fprintf(&b,
			`<li><strong>%s, Hadith %s</strong> (%s)<br>%s<br><em>%s</em></li>`,
			html.EscapeString(ref.Book), html.EscapeString(ref.Number),
			html.EscapeString(ref.Narrator), html.EscapeString(ref.Arabic),
			html.EscapeString(ref.English))
	}
	b.WriteString(`</ul>`)

	b.WriteString(`</div>`)
	return b.String()
}

// Paragraph wraps a message in a paragraph tag. Used for the error and
// validation responses.
func Paragraph(message string) string {
	return "<p>" + message + "</p>"
}
