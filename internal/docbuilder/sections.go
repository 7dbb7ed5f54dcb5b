package docbuilder

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/voxnote/voxnote/internal/vectorindex"
)

type section struct {
	Subtopic string
	Body     string
}

// splitSections cuts summary markdown at level-2 headings. Text before the
// first heading, or a summary with no headings at all, becomes the fallback
// "전체" section.
func splitSections(markdown string) []section {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	type headingPos struct {
		title string
		start int // byte offset of the heading's line
	}
	var headings []headingPos
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 2 || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		start := seg.Start
		for start > 0 && src[start-1] != '\n' {
			start--
		}
		headings = append(headings, headingPos{
			title: strings.TrimSpace(string(src[seg.Start:seg.Stop])),
			start: start,
		})
	}

	var sections []section
	if len(headings) == 0 {
		if body := strings.TrimSpace(markdown); body != "" {
			sections = append(sections, section{Subtopic: vectorindex.GeneralSubtopic, Body: body})
		}
		return sections
	}

	if preamble := strings.TrimSpace(string(src[:headings[0].start])); preamble != "" {
		sections = append(sections, section{Subtopic: vectorindex.GeneralSubtopic, Body: preamble})
	}
	for i, h := range headings {
		end := len(src)
		if i+1 < len(headings) {
			end = headings[i+1].start
		}
		bodyStart := h.start
		if nl := strings.IndexByte(string(src[h.start:end]), '\n'); nl >= 0 {
			bodyStart = h.start + nl + 1
		} else {
			bodyStart = end
		}
		body := strings.TrimSpace(string(src[bodyStart:end]))
		if body == "" {
			continue
		}
		sections = append(sections, section{Subtopic: h.title, Body: body})
	}
	return sections
}

var sentencePattern = regexp.MustCompile(`(?m)(?U)[^.!?]+[.!?]`)

// chunkText splits text into parts of at most maxChars runes, cutting at
// sentence boundaries. A single sentence longer than maxChars stays whole
// rather than being cut mid-sentence. maxChars <= 0 disables splitting.
func chunkText(body string, maxChars int) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if maxChars <= 0 || len([]rune(body)) <= maxChars {
		return []string{body}
	}

	sentences := splitSentences(body)
	var parts []string
	var current strings.Builder
	currentLen := 0
	for _, s := range sentences {
		sLen := len([]rune(s))
		if currentLen > 0 && currentLen+1+sLen > maxChars {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(s)
		currentLen += sLen
	}
	if currentLen > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func splitSentences(body string) []string {
	locs := sentencePattern.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return []string{body}
	}
	var sentences []string
	last := 0
	for _, loc := range locs {
		sentences = append(sentences, strings.TrimSpace(body[loc[0]:loc[1]]))
		last = loc[1]
	}
	// Trailing text without sentence-final punctuation.
	if rest := strings.TrimSpace(body[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
