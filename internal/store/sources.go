package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voxnote/voxnote/internal/transcript"
)

// ErrNotFound is returned by updates targeting a source that does not exist.
var ErrNotFound = errors.New("source not found")

// SaveSource upserts a source record and fully replaces its segment list in
// one transaction. Re-running ingestion for the same source is idempotent.
func (s *Store) SaveSource(ctx context.Context, src transcript.Source, segments []transcript.Segment) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sources (source_id, source_type, title, url, channel, filename, duration, stt_service)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, source_type) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			channel = excluded.channel,
			filename = excluded.filename,
			duration = excluded.duration,
			stt_service = excluded.stt_service`,
		src.ID, string(src.Type), src.Title, src.URL, src.Channel, src.Filename, src.Duration, src.STTService)
	if err != nil {
		return fmt.Errorf("upserting source %s: %w", src.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM segments WHERE source_id = ? AND source_type = ?`,
		src.ID, string(src.Type)); err != nil {
		return fmt.Errorf("clearing old segments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (source_id, source_type, segment_id, speaker, start_time, end_time, confidence, text, original_language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing segment insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		var endTime any
		if seg.EndTime != nil {
			endTime = *seg.EndTime
		}
		if _, err := stmt.ExecContext(ctx,
			src.ID, string(src.Type), seg.ID, seg.Speaker, seg.StartTime, endTime, seg.Confidence, seg.Text, seg.Language); err != nil {
			return fmt.Errorf("inserting segment %d: %w", seg.ID, err)
		}
	}

	return tx.Commit()
}

// SourceExists reports whether a source record exists.
func (s *Store) SourceExists(ctx context.Context, sourceID string, sourceType transcript.SourceType) (bool, error) {
	var one int
	err := s.QueryRowContext(ctx,
		`SELECT 1 FROM sources WHERE source_id = ? AND source_type = ?`,
		sourceID, string(sourceType)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking source %s: %w", sourceID, err)
	}
	return true, nil
}

// GetSource returns a single source with its segment count and summary flag,
// or nil if it does not exist.
func (s *Store) GetSource(ctx context.Context, sourceID string, sourceType transcript.SourceType) (*transcript.Source, error) {
	row := s.QueryRowContext(ctx, `
		SELECT s.source_id, s.source_type, s.title, s.url, s.channel, s.filename,
		       s.duration, s.stt_service, s.created_at, s.summary != '',
		       (SELECT COUNT(*) FROM segments g WHERE g.source_id = s.source_id AND g.source_type = s.source_type)
		FROM sources s WHERE s.source_id = ? AND s.source_type = ?`,
		sourceID, string(sourceType))

	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading source %s: %w", sourceID, err)
	}
	return src, nil
}

// ListSources returns all sources, optionally filtered by type, newest first.
func (s *Store) ListSources(ctx context.Context, sourceType transcript.SourceType) ([]transcript.Source, error) {
	query := `
		SELECT s.source_id, s.source_type, s.title, s.url, s.channel, s.filename,
		       s.duration, s.stt_service, s.created_at, s.summary != '',
		       (SELECT COUNT(*) FROM segments g WHERE g.source_id = s.source_id AND g.source_type = s.source_type)
		FROM sources s`
	args := []any{}
	if sourceType != "" {
		query += ` WHERE s.source_type = ?`
		args = append(args, string(sourceType))
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []transcript.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

// SaveSummary stores the current summary markdown for a source, replacing
// any previous one. An empty string clears it.
func (s *Store) SaveSummary(ctx context.Context, sourceID string, sourceType transcript.SourceType, summary string) error {
	res, err := s.ExecContext(ctx,
		`UPDATE sources SET summary = ? WHERE source_id = ? AND source_type = ?`,
		summary, sourceID, string(sourceType))
	if err != nil {
		return fmt.Errorf("saving summary for %s: %w", sourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("saving summary for %s (%s): %w", sourceID, sourceType, ErrNotFound)
	}
	return nil
}

// GetSummary returns the stored summary markdown for a source, empty if none.
func (s *Store) GetSummary(ctx context.Context, sourceID string, sourceType transcript.SourceType) (string, error) {
	var summary string
	err := s.QueryRowContext(ctx,
		`SELECT summary FROM sources WHERE source_id = ? AND source_type = ?`,
		sourceID, string(sourceType)).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading summary for %s: %w", sourceID, err)
	}
	return summary, nil
}

// UpdateTitle changes the display title of a source.
func (s *Store) UpdateTitle(ctx context.Context, sourceID string, sourceType transcript.SourceType, title string) error {
	res, err := s.ExecContext(ctx,
		`UPDATE sources SET title = ? WHERE source_id = ? AND source_type = ?`,
		title, sourceID, string(sourceType))
	if err != nil {
		return fmt.Errorf("updating title for %s: %w", sourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("updating title for %s (%s): %w", sourceID, sourceType, ErrNotFound)
	}
	return nil
}

// DeleteSource removes a source record; its segments go with it via the
// foreign key cascade. Returns false if no record existed.
func (s *Store) DeleteSource(ctx context.Context, sourceID string, sourceType transcript.SourceType) (bool, error) {
	res, err := s.ExecContext(ctx,
		`DELETE FROM sources WHERE source_id = ? AND source_type = ?`,
		sourceID, string(sourceType))
	if err != nil {
		return false, fmt.Errorf("deleting source %s: %w", sourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*transcript.Source, error) {
	var src transcript.Source
	var typ, createdAt string
	if err := row.Scan(&src.ID, &typ, &src.Title, &src.URL, &src.Channel, &src.Filename,
		&src.Duration, &src.STTService, &createdAt, &src.HasSummary, &src.SegmentCount); err != nil {
		return nil, err
	}
	src.Type = transcript.SourceType(typ)
	if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		src.CreatedAt = t
	}
	return &src, nil
}
