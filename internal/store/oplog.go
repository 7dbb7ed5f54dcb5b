package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voxnote/voxnote/internal/transcript"
)

// IndexAction enumerates the vector index operations that get logged.
type IndexAction string

const (
	ActionStoreChunks  IndexAction = "store_chunks"
	ActionStoreSummary IndexAction = "store_summary"
	ActionDelete       IndexAction = "delete"
	ActionUpdateTitle  IndexAction = "update_title"
)

// IndexOp is one logged vector index operation. Failed operations keep their
// error text so a divergence between the metadata store and the index can be
// found and reconciled later.
type IndexOp struct {
	ID            string
	Timestamp     time.Time
	Action        IndexAction
	SourceID      string
	SourceType    transcript.SourceType
	DocumentCount int
	Error         string
}

// LogIndexOp records a vector index operation in the index log.
func (s *Store) LogIndexOp(ctx context.Context, op IndexOp) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	_, err := s.ExecContext(ctx, `
		INSERT INTO index_log (id, action, source_id, source_type, document_count, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		op.ID, string(op.Action), op.SourceID, string(op.SourceType), op.DocumentCount, op.Error)
	if err != nil {
		return fmt.Errorf("logging index op: %w", err)
	}
	return nil
}

// RecentIndexOps returns the most recent index operations, newest first.
func (s *Store) RecentIndexOps(ctx context.Context, limit int) ([]IndexOp, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.QueryContext(ctx, `
		SELECT id, timestamp, action, source_id, source_type, document_count, error
		FROM index_log ORDER BY timestamp DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing index ops: %w", err)
	}
	defer rows.Close()

	var ops []IndexOp
	for rows.Next() {
		var op IndexOp
		var ts, action, typ string
		if err := rows.Scan(&op.ID, &ts, &action, &op.SourceID, &typ, &op.DocumentCount, &op.Error); err != nil {
			return nil, fmt.Errorf("scanning index op: %w", err)
		}
		op.Action = IndexAction(action)
		op.SourceType = transcript.SourceType(typ)
		if t, err := time.Parse("2006-01-02 15:04:05", ts); err == nil {
			op.Timestamp = t
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
