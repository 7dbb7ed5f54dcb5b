// Package vectorindex wraps chromem-go with the three logical collections
// used by voxnote: youtube transcript chunks, audio transcript chunks and
// cross-source summaries. Documents carry typed metadata with a document_type
// discriminant, flattened to string maps at the chromem boundary.
package vectorindex

import (
	"fmt"
	"strconv"
	"time"

	"github.com/voxnote/voxnote/internal/transcript"
)

// DocumentType discriminates the two kinds of indexed documents.
type DocumentType string

const (
	DocChunk   DocumentType = "chunk"
	DocSummary DocumentType = "summary"
)

// GeneralSubtopic is the subtopic assigned to a summary that could not be
// split into sections. The original deployment is Korean-first, hence the
// label.
const GeneralSubtopic = "전체"

// Metadata is the tagged variant carried by every indexed document:
// either ChunkMetadata or SummaryMetadata.
type Metadata interface {
	DocumentType() DocumentType
	Source() (id string, typ transcript.SourceType)
	toMap() map[string]string
}

// ChunkMetadata describes one transcript chunk document. There is one chunk
// per segment; EndTime is nil for a source's open-ended final segment.
type ChunkMetadata struct {
	SourceID   string                `json:"source_id"`
	SourceType transcript.SourceType `json:"source_type"`
	SegmentID  int                   `json:"segment_id"`
	Speaker    string                `json:"speaker"`
	StartTime  float64               `json:"start_time"`
	EndTime    *float64              `json:"end_time,omitempty"`
	Confidence float64               `json:"confidence"`
	Title      string                `json:"title,omitempty"` // display title or audio filename
}

func (m ChunkMetadata) DocumentType() DocumentType { return DocChunk }

func (m ChunkMetadata) Source() (string, transcript.SourceType) {
	return m.SourceID, m.SourceType
}

func (m ChunkMetadata) toMap() map[string]string {
	md := map[string]string{
		"document_type": string(DocChunk),
		"source_id":     m.SourceID,
		"source_type":   string(m.SourceType),
		"segment_id":    strconv.Itoa(m.SegmentID),
		"speaker":       m.Speaker,
		"start_time":    formatSeconds(m.StartTime),
		"confidence":    formatSeconds(m.Confidence),
	}
	if m.EndTime != nil {
		md["end_time"] = formatSeconds(*m.EndTime)
	}
	if m.Title != "" {
		md["title"] = m.Title
	}
	return md
}

// SummaryMetadata describes one summary subtopic document.
type SummaryMetadata struct {
	SourceID      string                `json:"source_id"`
	SourceType    transcript.SourceType `json:"source_type"`
	Subtopic      string                `json:"subtopic"`
	SubtopicIndex int                   `json:"subtopic_index"`
	CreatedAt     time.Time             `json:"created_at"`
	Filename      string                `json:"filename,omitempty"` // audio only
}

func (m SummaryMetadata) DocumentType() DocumentType { return DocSummary }

func (m SummaryMetadata) Source() (string, transcript.SourceType) {
	return m.SourceID, m.SourceType
}

func (m SummaryMetadata) toMap() map[string]string {
	md := map[string]string{
		"document_type":  string(DocSummary),
		"source_id":      m.SourceID,
		"source_type":    string(m.SourceType),
		"subtopic":       m.Subtopic,
		"subtopic_index": strconv.Itoa(m.SubtopicIndex),
		"created_at":     m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.Filename != "" {
		md["filename"] = m.Filename
	}
	return md
}

// Document is one unit of the vector index. Embedding may be pre-set to
// skip the embedding call on insert (used by metadata-only updates).
type Document struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"-"`
}

// SearchResult pairs a document with its query distance (lower = closer).
type SearchResult struct {
	Document Document `json:"document"`
	Distance float64  `json:"distance"`
}

// ChunkDocID derives the index document id for a transcript chunk.
func ChunkDocID(sourceID string, segmentID int) string {
	return fmt.Sprintf("%s_seg_%d", sourceID, segmentID)
}

// SummaryDocID derives the index document id for a summary subtopic.
func SummaryDocID(sourceID string, subtopicIndex int) string {
	return fmt.Sprintf("%s_summary_%d", sourceID, subtopicIndex)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// metadataFromMap rebuilds the typed metadata from chromem's flat map,
// switching on the document_type discriminant.
func metadataFromMap(md map[string]string) (Metadata, error) {
	switch DocumentType(md["document_type"]) {
	case DocChunk:
		segmentID, err := strconv.Atoi(md["segment_id"])
		if err != nil {
			return nil, fmt.Errorf("chunk metadata: bad segment_id %q", md["segment_id"])
		}
		startTime, _ := strconv.ParseFloat(md["start_time"], 64)
		confidence, _ := strconv.ParseFloat(md["confidence"], 64)
		m := ChunkMetadata{
			SourceID:   md["source_id"],
			SourceType: transcript.SourceType(md["source_type"]),
			SegmentID:  segmentID,
			Speaker:    md["speaker"],
			StartTime:  startTime,
			Confidence: confidence,
			Title:      md["title"],
		}
		if raw, ok := md["end_time"]; ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				m.EndTime = &v
			}
		}
		return m, nil

	case DocSummary:
		index, _ := strconv.Atoi(md["subtopic_index"])
		createdAt, _ := time.Parse(time.RFC3339, md["created_at"])
		return SummaryMetadata{
			SourceID:      md["source_id"],
			SourceType:    transcript.SourceType(md["source_type"]),
			Subtopic:      md["subtopic"],
			SubtopicIndex: index,
			CreatedAt:     createdAt,
			Filename:      md["filename"],
		}, nil
	}
	return nil, fmt.Errorf("unknown document_type %q", md["document_type"])
}
