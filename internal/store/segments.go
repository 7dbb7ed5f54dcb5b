package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voxnote/voxnote/internal/transcript"
)

// Segments returns a source's segments ordered by segment id.
func (s *Store) Segments(ctx context.Context, sourceID string, sourceType transcript.SourceType) ([]transcript.Segment, error) {
	return s.querySegments(ctx, `
		SELECT segment_id, speaker, start_time, end_time, confidence, text, original_language
		FROM segments WHERE source_id = ? AND source_type = ?
		ORDER BY segment_id`,
		sourceID, string(sourceType))
}

// SegmentsBySpeaker returns a source's segments for one speaker, ordered by
// segment id.
func (s *Store) SegmentsBySpeaker(ctx context.Context, sourceID string, sourceType transcript.SourceType, speaker string) ([]transcript.Segment, error) {
	return s.querySegments(ctx, `
		SELECT segment_id, speaker, start_time, end_time, confidence, text, original_language
		FROM segments WHERE source_id = ? AND source_type = ? AND speaker = ?
		ORDER BY segment_id`,
		sourceID, string(sourceType), speaker)
}

// SegmentsByTimeRange returns a source's segments whose start time falls in
// [start, end), ordered by start time.
func (s *Store) SegmentsByTimeRange(ctx context.Context, sourceID string, sourceType transcript.SourceType, start, end float64) ([]transcript.Segment, error) {
	return s.querySegments(ctx, `
		SELECT segment_id, speaker, start_time, end_time, confidence, text, original_language
		FROM segments WHERE source_id = ? AND source_type = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		sourceID, string(sourceType), start, end)
}

func (s *Store) querySegments(ctx context.Context, query string, args ...any) ([]transcript.Segment, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var segments []transcript.Segment
	for rows.Next() {
		var seg transcript.Segment
		var endTime sql.NullFloat64
		if err := rows.Scan(&seg.ID, &seg.Speaker, &seg.StartTime, &endTime, &seg.Confidence, &seg.Text, &seg.Language); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		if endTime.Valid {
			v := endTime.Float64
			seg.EndTime = &v
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}
