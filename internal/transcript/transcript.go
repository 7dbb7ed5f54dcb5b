// Package transcript defines the domain types shared by the ingestion,
// indexing and retrieval layers: media sources and their speaker-attributed
// transcript segments.
package transcript

import (
	"fmt"
	"time"
)

// SourceType identifies where a transcript came from.
type SourceType string

const (
	SourceYouTube SourceType = "youtube"
	SourceAudio   SourceType = "audio"
)

// ParseSourceType validates and converts a raw string into a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(s) {
	case SourceYouTube, SourceAudio:
		return SourceType(s), nil
	}
	return "", fmt.Errorf("unknown source type %q: must be youtube or audio", s)
}

// Segment is one speaker-attributed, timestamped utterance produced by
// transcription. EndTime is nil when the transcription left the segment
// open-ended, which is normal for the final segment of a source.
type Segment struct {
	ID         int      `json:"id"`
	Speaker    string   `json:"speaker"`
	StartTime  float64  `json:"start_time"`
	EndTime    *float64 `json:"end_time,omitempty"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Language   string   `json:"original_language,omitempty"`
}

// Source is one original media item: a YouTube video identified by its
// video id, or an uploaded audio file identified by its content hash.
type Source struct {
	ID           string     `json:"source_id"`
	Type         SourceType `json:"source_type"`
	Title        string     `json:"title,omitempty"`
	URL          string     `json:"url,omitempty"`      // YouTube only
	Channel      string     `json:"channel,omitempty"`  // YouTube only
	Filename     string     `json:"filename,omitempty"` // audio only
	Duration     float64    `json:"duration,omitempty"`
	STTService   string     `json:"stt_service,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	SegmentCount int        `json:"segment_count"`
	HasSummary   bool       `json:"has_summary"`
}

// DisplayName returns the best human-readable name for the source.
func (s Source) DisplayName() string {
	if s.Title != "" {
		return s.Title
	}
	if s.Filename != "" {
		return s.Filename
	}
	return s.ID
}
