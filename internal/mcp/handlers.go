package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/voxnote/voxnote/internal/retrieval"
	"github.com/voxnote/voxnote/internal/transcript"
	"github.com/voxnote/voxnote/internal/vectorindex"
)

// handleSearchTranscripts performs semantic search over transcript chunks.
func (s *Server) handleSearchTranscripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	opts := retrieval.SearchOptions{
		Limit:    request.GetInt("limit", 0),
		SourceID: request.GetString("source_id", ""),
	}
	if raw := request.GetString("source_type", ""); raw != "" {
		typ, err := transcript.ParseSourceType(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.SourceType = typ
	}

	results, err := s.engine.SearchChunks(ctx, query, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. The transcripts may not be indexed yet."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleAskTranscripts answers a question with retrieved evidence and an LLM.
func (s *Server) handleAskTranscripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	opts := retrieval.AskOptions{
		ChunkLimit: request.GetInt("limit", 0),
		SourceID:   request.GetString("source_id", ""),
	}
	if n := request.GetInt("summary_limit", -1); n >= 0 {
		opts.SummaryLimit = &n
	}
	if raw := request.GetString("source_type", ""); raw != "" {
		typ, err := transcript.ParseSourceType(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.SourceType = typ
	}

	answer, err := s.engine.Ask(ctx, question, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(answer.Answer)
	if len(answer.Chunks) > 0 {
		sb.WriteString("\n\nEvidence:\n")
		for _, r := range answer.Chunks {
			md, ok := r.Document.Metadata.(vectorindex.ChunkMetadata)
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "- %s (%s) %s at %.1fs: %s\n", md.SourceID, md.SourceType, md.Speaker, md.StartTime, r.Document.Text)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListSources lists the indexed sources.
func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var typ transcript.SourceType
	if raw := request.GetString("source_type", ""); raw != "" {
		parsed, err := transcript.ParseSourceType(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		typ = parsed
	}

	sources, err := s.store.ListSources(ctx, typ)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sources failed: %v", err)), nil
	}
	if len(sources) == 0 {
		return mcp.NewToolResultText("No sources indexed yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d source(s):\n", len(sources))
	for _, src := range sources {
		summary := "no summary"
		if src.HasSummary {
			summary = "has summary"
		}
		fmt.Fprintf(&sb, "- [%s] %s: %s (%d segments, %s)\n", src.Type, src.ID, src.DisplayName(), src.SegmentCount, summary)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetSummary returns the markdown summary of one source.
func (s *Server) handleGetSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawType, err := request.RequireString("source_type")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source_type"), nil
	}
	sourceID, err := request.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source_id"), nil
	}
	typ, err := transcript.ParseSourceType(rawType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := s.manager.GetSummary(ctx, sourceID, typ)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading summary failed: %v", err)), nil
	}
	if summary == "" {
		return mcp.NewToolResultError(fmt.Sprintf("no summary for %s (%s)", sourceID, typ)), nil
	}
	return mcp.NewToolResultText(summary), nil
}

// formatSearchResults converts search results into a text format for AI
// agent consumption.
func formatSearchResults(results []vectorindex.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		if md, ok := r.Document.Metadata.(vectorindex.ChunkMetadata); ok {
			fmt.Fprintf(&sb, "Source: %s (%s)\n", md.SourceID, md.SourceType)
			if md.Title != "" {
				fmt.Fprintf(&sb, "Title: %s\n", md.Title)
			}
			fmt.Fprintf(&sb, "Speaker: %s\n", md.Speaker)
			if md.EndTime != nil {
				fmt.Fprintf(&sb, "Time: %.1fs - %.1fs\n", md.StartTime, *md.EndTime)
			} else {
				fmt.Fprintf(&sb, "Time: %.1fs -\n", md.StartTime)
			}
		}
		fmt.Fprintf(&sb, "Distance: %.4f\n", r.Distance)
		fmt.Fprintf(&sb, "Text: %s\n", r.Document.Text)
	}
	return sb.String()
}
