// Package summarizer produces markdown summaries of transcripts with an LLM.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voxnote/voxnote/internal/llm"
	"github.com/voxnote/voxnote/internal/transcript"
)

// ErrEmptySummary is returned when the model produces no usable text.
var ErrEmptySummary = errors.New("model returned an empty summary")

const summarySystemPrompt = `You summarize transcripts of recorded conversations and videos.

Write the summary as markdown:
- Group the content into subtopics, each under a level-2 heading ("## Subtopic").
- Keep each subtopic section to a few sentences covering what was said and decided.
- Attribute important statements to their speakers.
- Write in the language of the transcript.
- Output only the markdown summary, nothing else.`

// Summarizer turns a transcript into subtopic-structured markdown.
type Summarizer struct {
	provider llm.Provider
	model    string
}

func New(provider llm.Provider, model string) *Summarizer {
	return &Summarizer{provider: provider, model: model}
}

// Summarize asks the model for a subtopic-structured summary of the
// transcript.
func (s *Summarizer) Summarize(ctx context.Context, source transcript.Source, segments []transcript.Segment) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("source %s has no segments to summarize", source.ID)
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: summarySystemPrompt},
			{Role: llm.RoleUser, Content: buildTranscriptPrompt(source, segments)},
		},
		MaxTokens:   4096,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM completion: %w", err)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

func buildTranscriptPrompt(source transcript.Source, segments []transcript.Segment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Recording\n%s (%s)\n", source.DisplayName(), source.Type)
	if source.Channel != "" {
		fmt.Fprintf(&b, "Channel: %s\n", source.Channel)
	}

	b.WriteString("\n## Transcript\n")
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%.1fs] %s: %s\n", seg.StartTime, seg.Speaker, text)
	}

	b.WriteString("\nSummarize this transcript.\n")
	return b.String()
}
