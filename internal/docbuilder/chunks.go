// Package docbuilder turns transcript segments and markdown summaries into
// vector index documents.
package docbuilder

import (
	"strings"
	"time"

	"github.com/voxnote/voxnote/internal/transcript"
	"github.com/voxnote/voxnote/internal/vectorindex"
)

// BuildChunkDocuments maps segments to chunk documents, one per segment, in
// segment order. Segments with empty text are skipped and counted. A segment
// without an end time borrows the next segment's start time; the final
// segment stays open-ended.
func BuildChunkDocuments(source transcript.Source, segments []transcript.Segment) (docs []vectorindex.Document, skipped int) {
	for i, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			skipped++
			continue
		}
		endTime := seg.EndTime
		if endTime == nil && i+1 < len(segments) {
			next := segments[i+1].StartTime
			endTime = &next
		}
		docs = append(docs, vectorindex.Document{
			ID:   vectorindex.ChunkDocID(source.ID, seg.ID),
			Text: text,
			Metadata: vectorindex.ChunkMetadata{
				SourceID:   source.ID,
				SourceType: source.Type,
				SegmentID:  seg.ID,
				Speaker:    seg.Speaker,
				StartTime:  seg.StartTime,
				EndTime:    endTime,
				Confidence: seg.Confidence,
				Title:      source.DisplayName(),
			},
		})
	}
	return docs, skipped
}

// BuildSummaryDocuments splits a markdown summary into one document per
// subtopic section, re-chunking sections longer than maxChars at sentence
// boundaries. Subtopic indexes are assigned in document order so the summary
// can be reassembled later.
func BuildSummaryDocuments(source transcript.Source, markdown string, maxChars int, now time.Time) []vectorindex.Document {
	var docs []vectorindex.Document
	index := 0
	for _, sec := range splitSections(markdown) {
		for _, part := range chunkText(sec.Body, maxChars) {
			docs = append(docs, vectorindex.Document{
				ID:   vectorindex.SummaryDocID(source.ID, index),
				Text: part,
				Metadata: vectorindex.SummaryMetadata{
					SourceID:      source.ID,
					SourceType:    source.Type,
					Subtopic:      sec.Subtopic,
					SubtopicIndex: index,
					CreatedAt:     now,
					Filename:      source.Filename,
				},
			})
			index++
		}
	}
	return docs
}

// AssembleSummary rebuilds summary markdown from documents ordered by
// subtopic index. Consecutive documents sharing a subtopic are rejoined;
// the fallback subtopic is emitted without a heading, matching how an
// unstructured summary was split.
func AssembleSummary(docs []vectorindex.Document) string {
	var b strings.Builder
	current := ""
	for i, doc := range docs {
		md, ok := doc.Metadata.(vectorindex.SummaryMetadata)
		if !ok {
			continue
		}
		switch {
		case i == 0:
			if md.Subtopic != vectorindex.GeneralSubtopic {
				b.WriteString("## " + md.Subtopic + "\n\n")
			}
		case md.Subtopic != current:
			b.WriteString("\n\n## " + md.Subtopic + "\n\n")
		default:
			b.WriteString(" ")
		}
		current = md.Subtopic
		b.WriteString(strings.TrimSpace(doc.Text))
	}
	return b.String()
}
