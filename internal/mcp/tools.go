package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchTranscriptsTool defines the search_transcripts MCP tool.
var searchTranscriptsTool = mcp.NewTool("search_transcripts",
	mcp.WithDescription("Search indexed transcripts semantically. Returns matching utterances with speaker, timestamp and source."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
	mcp.WithString("source_type",
		mcp.Description("Restrict the search to one source type"),
		mcp.Enum("youtube", "audio"),
	),
	mcp.WithString("source_id",
		mcp.Description("Restrict the search to one source id"),
	),
)

// askTranscriptsTool defines the ask_transcripts MCP tool.
var askTranscriptsTool = mcp.NewTool("ask_transcripts",
	mcp.WithDescription("Ask a question about the indexed transcripts. Retrieves summaries and transcript excerpts as evidence and answers with an LLM."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Question to answer from the transcripts"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of transcript excerpts to retrieve (default 5)"),
	),
	mcp.WithNumber("summary_limit",
		mcp.Description("Maximum number of summaries to retrieve (default 3, 0 skips summary retrieval)"),
	),
	mcp.WithString("source_type",
		mcp.Description("Restrict retrieval to one source type"),
		mcp.Enum("youtube", "audio"),
	),
	mcp.WithString("source_id",
		mcp.Description("Restrict retrieval to one source id"),
	),
)

// listSourcesTool defines the list_sources MCP tool.
var listSourcesTool = mcp.NewTool("list_sources",
	mcp.WithDescription("List indexed sources with their segment counts and whether a summary exists."),
	mcp.WithString("source_type",
		mcp.Description("Restrict the listing to one source type"),
		mcp.Enum("youtube", "audio"),
	),
)

// getSummaryTool defines the get_summary MCP tool.
var getSummaryTool = mcp.NewTool("get_summary",
	mcp.WithDescription("Get the markdown summary of one source."),
	mcp.WithString("source_type",
		mcp.Required(),
		mcp.Description("Source type"),
		mcp.Enum("youtube", "audio"),
	),
	mcp.WithString("source_id",
		mcp.Required(),
		mcp.Description("Source id"),
	),
)
