// Package retrieval answers questions over indexed transcripts. Search is
// two-stage: summary documents give topic-level context, chunk documents give
// the exact utterances. The two result sets are kept separate and handed to
// the model as labeled evidence groups.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voxnote/voxnote/internal/llm"
	"github.com/voxnote/voxnote/internal/transcript"
	"github.com/voxnote/voxnote/internal/vectorindex"
)

// ErrEmptyAnswer is returned when the model produces no usable text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

const answerSystemPrompt = `You are an assistant that answers questions about recorded conversations and videos using their transcripts.

You receive two groups of evidence:
- Summaries: topic-level overviews of whole recordings.
- Transcript excerpts: exact utterances with speaker and timestamp.

Rules:
- Base your answer only on the evidence provided.
- Prefer transcript excerpts for specifics, summaries for context.
- When citing an utterance, mention the speaker and the timestamp.
- If the evidence does not cover the question, say so plainly.
- Answer in the language of the question.`

// Engine runs searches and question answering over the vector index.
type Engine struct {
	index    *vectorindex.Index
	provider llm.Provider
	model    string

	chunkResults   int
	summaryResults int
}

func New(index *vectorindex.Index, provider llm.Provider, model string, chunkResults, summaryResults int) *Engine {
	if chunkResults <= 0 {
		chunkResults = 5
	}
	if summaryResults <= 0 {
		summaryResults = 3
	}
	return &Engine{
		index:          index,
		provider:       provider,
		model:          model,
		chunkResults:   chunkResults,
		summaryResults: summaryResults,
	}
}

// SearchOptions narrows a chunk search. Zero values mean no narrowing and
// the engine's default limit.
type SearchOptions struct {
	Limit      int
	SourceType transcript.SourceType
	SourceID   string
}

// SearchChunks returns transcript chunks ranked by similarity to the query.
func (e *Engine) SearchChunks(ctx context.Context, query string, opts SearchOptions) ([]vectorindex.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = e.chunkResults
	}
	return e.index.SearchChunks(ctx, query, limit, opts.SourceType, opts.SourceID)
}

// SearchSummaries returns summary documents ranked by similarity to the query.
func (e *Engine) SearchSummaries(ctx context.Context, query string, limit int) ([]vectorindex.SearchResult, error) {
	if limit <= 0 {
		limit = e.summaryResults
	}
	return e.index.SearchSummaries(ctx, query, limit)
}

// AskOptions controls the two retrieval stages of one Ask call.
type AskOptions struct {
	// ChunkLimit caps the chunk stage; zero or negative means the engine
	// default.
	ChunkLimit int
	// SummaryLimit caps the summary stage. Nil means the engine default;
	// an explicit 0 skips the stage entirely, yielding no summary evidence.
	SummaryLimit *int
	SourceType   transcript.SourceType
	SourceID     string
}

// Answer is the result of one Ask call, with the evidence that supported it.
type Answer struct {
	Answer       string                     `json:"answer"`
	Model        string                     `json:"model"`
	Summaries    []vectorindex.SearchResult `json:"summaries"`
	Chunks       []vectorindex.SearchResult `json:"chunks"`
	SummaryCount int                        `json:"summary_results_count"`
	ChunkCount   int                        `json:"chunk_results_count"`
	InputTokens  int                        `json:"input_tokens"`
	OutputTokens int                        `json:"output_tokens"`
}

// Ask retrieves evidence for the question and asks the model to answer from
// it. Summary and chunk retrieval run independently; neither set is merged
// into the other. An empty evidence set still goes to the model, which is
// instructed to say when it cannot answer.
func (e *Engine) Ask(ctx context.Context, question string, opts AskOptions) (*Answer, error) {
	summaryN := e.summaryResults
	if opts.SummaryLimit != nil {
		summaryN = *opts.SummaryLimit
	}
	var summaries []vectorindex.SearchResult
	if summaryN > 0 {
		var err error
		summaries, err = e.index.SearchSummaries(ctx, question, summaryN)
		if err != nil {
			return nil, fmt.Errorf("summary retrieval: %w", err)
		}
	}
	limit := opts.ChunkLimit
	if limit <= 0 {
		limit = e.chunkResults
	}
	chunks, err := e.index.SearchChunks(ctx, question, limit, opts.SourceType, opts.SourceID)
	if err != nil {
		return nil, fmt.Errorf("chunk retrieval: %w", err)
	}

	prompt := buildAnswerPrompt(question, summaries, chunks)
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   2048,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM completion: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return nil, ErrEmptyAnswer
	}
	return &Answer{
		Answer:       text,
		Model:        resp.Model,
		Summaries:    summaries,
		Chunks:       chunks,
		SummaryCount: len(summaries),
		ChunkCount:   len(chunks),
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

func buildAnswerPrompt(question string, summaries, chunks []vectorindex.SearchResult) string {
	var b strings.Builder

	b.WriteString("## Summaries\n")
	if len(summaries) > 0 {
		for i, r := range summaries {
			md, ok := r.Document.Metadata.(vectorindex.SummaryMetadata)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "[summary %d] source %s (%s), topic %s:\n%s\n\n", i+1, md.SourceID, md.SourceType, md.Subtopic, r.Document.Text)
		}
	} else {
		b.WriteString("(no summaries available)\n\n")
	}

	b.WriteString("## Transcript excerpts\n")
	if len(chunks) > 0 {
		for i, r := range chunks {
			md, ok := r.Document.Metadata.(vectorindex.ChunkMetadata)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "[excerpt %d] source %s (%s), %s at %s:\n%s\n\n", i+1, md.SourceID, md.SourceType, md.Speaker, formatTimestamp(md.StartTime), r.Document.Text)
		}
	} else {
		b.WriteString("(no transcript excerpts available)\n\n")
	}

	fmt.Fprintf(&b, "## Question\n%s\n", question)
	return b.String()
}

// formatTimestamp renders seconds as m:ss or h:mm:ss.
func formatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
