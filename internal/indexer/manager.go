// Package indexer coordinates the metadata store and the vector index so
// both stay consistent across ingestion, summarization, deletion and title
// updates.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/voxnote/voxnote/internal/docbuilder"
	"github.com/voxnote/voxnote/internal/embeddings"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/transcript"
	"github.com/voxnote/voxnote/internal/vectorindex"
)

// ErrSourceNotFound is returned for operations on unknown sources.
var ErrSourceNotFound = errors.New("source not found")

// ErrNoSegments is returned when ingestion leaves nothing to index.
var ErrNoSegments = errors.New("no indexable segments")

const lockStripes = 32

// Manager serializes mutations per source and keeps the sqlite store and the
// vector index in step. Embeddings are always computed before any existing
// documents are removed, so an embedding failure leaves the index untouched.
type Manager struct {
	store      *store.Store
	index      *vectorindex.Index
	embedder   embeddings.Embedder
	chunkChars int
	locks      [lockStripes]sync.Mutex
}

func New(st *store.Store, idx *vectorindex.Index, embedder embeddings.Embedder, summaryChunkChars int) *Manager {
	return &Manager{
		store:      st,
		index:      idx,
		embedder:   embedder,
		chunkChars: summaryChunkChars,
	}
}

func (m *Manager) lock(sourceID string, sourceType transcript.SourceType) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(string(sourceType) + "/" + sourceID))
	return &m.locks[h.Sum32()%lockStripes]
}

// StoreResult reports what an ingestion run did.
type StoreResult struct {
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
}

// StoreChunks ingests a source's segments: saves the metadata record, then
// replaces the source's chunk documents in the vector index. Re-running with
// the same source id replaces everything, it never duplicates.
func (m *Manager) StoreChunks(ctx context.Context, source transcript.Source, segments []transcript.Segment) (StoreResult, error) {
	mu := m.lock(source.ID, source.Type)
	mu.Lock()
	defer mu.Unlock()

	docs, skipped := docbuilder.BuildChunkDocuments(source, segments)
	if len(docs) == 0 {
		return StoreResult{Skipped: skipped}, fmt.Errorf("source %s: %w", source.ID, ErrNoSegments)
	}
	if err := m.embedDocuments(ctx, docs); err != nil {
		return StoreResult{}, err
	}

	if err := m.store.SaveSource(ctx, source, segments); err != nil {
		return StoreResult{}, err
	}
	if _, err := m.index.DeleteChunks(ctx, source.ID, source.Type); err != nil {
		return StoreResult{}, err
	}
	if err := m.index.AddDocuments(ctx, docs); err != nil {
		return StoreResult{}, err
	}

	m.logOp(ctx, store.IndexOp{
		Action:        store.ActionStoreChunks,
		SourceID:      source.ID,
		SourceType:    source.Type,
		DocumentCount: len(docs),
	})
	return StoreResult{Stored: len(docs), Skipped: skipped}, nil
}

// StoreSummary stores summary markdown for an already ingested source: the
// raw text goes to the metadata store, the per-subtopic documents replace the
// source's summary documents in the index.
func (m *Manager) StoreSummary(ctx context.Context, sourceID string, sourceType transcript.SourceType, markdown string) (StoreResult, error) {
	mu := m.lock(sourceID, sourceType)
	mu.Lock()
	defer mu.Unlock()

	source, err := m.store.GetSource(ctx, sourceID, sourceType)
	if err != nil {
		return StoreResult{}, err
	}
	if source == nil {
		return StoreResult{}, fmt.Errorf("source %s (%s): %w", sourceID, sourceType, ErrSourceNotFound)
	}

	docs := docbuilder.BuildSummaryDocuments(*source, markdown, m.chunkChars, time.Now())
	if err := m.embedDocuments(ctx, docs); err != nil {
		return StoreResult{}, err
	}

	if err := m.store.SaveSummary(ctx, sourceID, sourceType, markdown); err != nil {
		return StoreResult{}, err
	}
	if _, err := m.index.DeleteSummaries(ctx, sourceID); err != nil {
		return StoreResult{}, err
	}
	if err := m.index.AddDocuments(ctx, docs); err != nil {
		return StoreResult{}, err
	}

	m.logOp(ctx, store.IndexOp{
		Action:        store.ActionStoreSummary,
		SourceID:      sourceID,
		SourceType:    sourceType,
		DocumentCount: len(docs),
	})
	return StoreResult{Stored: len(docs)}, nil
}

// DeleteResult reports what a deletion removed. IndexError carries a vector
// index failure that did not stop the metadata deletion. MetadataRemoved is
// false when only stale index documents existed for the source.
type DeleteResult struct {
	Found            bool
	MetadataRemoved  bool
	ChunksRemoved    int
	SummariesRemoved int
	IndexError       error
}

// DeleteSource removes a source everywhere. An index failure is recorded but
// does not block removing the metadata record, so a broken index never traps
// a source.
func (m *Manager) DeleteSource(ctx context.Context, sourceID string, sourceType transcript.SourceType) (DeleteResult, error) {
	mu := m.lock(sourceID, sourceType)
	mu.Lock()
	defer mu.Unlock()

	var res DeleteResult
	var indexErrs []error

	n, err := m.index.DeleteChunks(ctx, sourceID, sourceType)
	if err != nil {
		indexErrs = append(indexErrs, err)
	}
	res.ChunksRemoved = n

	n, err = m.index.DeleteSummaries(ctx, sourceID)
	if err != nil {
		indexErrs = append(indexErrs, err)
	}
	res.SummariesRemoved = n
	res.IndexError = errors.Join(indexErrs...)
	if res.IndexError != nil {
		log.Printf("index cleanup for %s (%s) failed, removing metadata anyway: %v", sourceID, sourceType, res.IndexError)
	}

	found, err := m.store.DeleteSource(ctx, sourceID, sourceType)
	if err != nil {
		return res, err
	}
	res.MetadataRemoved = found
	res.Found = found || res.ChunksRemoved+res.SummariesRemoved > 0
	if !res.Found {
		return res, fmt.Errorf("source %s (%s): %w", sourceID, sourceType, ErrSourceNotFound)
	}

	op := store.IndexOp{
		Action:        store.ActionDelete,
		SourceID:      sourceID,
		SourceType:    sourceType,
		DocumentCount: res.ChunksRemoved + res.SummariesRemoved,
	}
	if res.IndexError != nil {
		op.Error = res.IndexError.Error()
	}
	m.logOp(ctx, op)
	return res, nil
}

// UpdateTitle renames a source in the metadata store and patches the name
// on its indexed documents, chunks and summaries both. Stored embeddings are
// reused, so no embedding provider call happens.
func (m *Manager) UpdateTitle(ctx context.Context, sourceID string, sourceType transcript.SourceType, title string) error {
	mu := m.lock(sourceID, sourceType)
	mu.Lock()
	defer mu.Unlock()

	if err := m.store.UpdateTitle(ctx, sourceID, sourceType, title); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("source %s (%s): %w", sourceID, sourceType, ErrSourceNotFound)
		}
		return err
	}

	docs, err := m.index.ListChunks(ctx, sourceID, sourceType)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		md := doc.Metadata.(vectorindex.ChunkMetadata)
		md.Title = title
		docs[i].Metadata = md
	}

	summaries, err := m.index.ListSummaries(ctx, sourceID)
	if err != nil {
		return err
	}
	for i, doc := range summaries {
		md := doc.Metadata.(vectorindex.SummaryMetadata)
		md.Filename = title
		summaries[i].Metadata = md
	}
	docs = append(docs, summaries...)

	if len(docs) > 0 {
		if err := m.index.AddDocuments(ctx, docs); err != nil {
			return err
		}
	}

	m.logOp(ctx, store.IndexOp{
		Action:        store.ActionUpdateTitle,
		SourceID:      sourceID,
		SourceType:    sourceType,
		DocumentCount: len(docs),
	})
	return nil
}

// GetSummary returns the summary markdown for a source: reassembled from the
// indexed subtopic documents when present, otherwise the stored raw text.
func (m *Manager) GetSummary(ctx context.Context, sourceID string, sourceType transcript.SourceType) (string, error) {
	docs, err := m.index.ListSummaries(ctx, sourceID)
	if err == nil && len(docs) > 0 {
		return docbuilder.AssembleSummary(docs), nil
	}
	if err != nil {
		log.Printf("listing summaries for %s failed, falling back to store: %v", sourceID, err)
	}
	return m.store.GetSummary(ctx, sourceID, sourceType)
}

func (m *Manager) embedDocuments(ctx context.Context, docs []vectorindex.Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	embs, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d documents: %w", len(docs), err)
	}
	for i := range docs {
		docs[i].Embedding = embs[i]
	}
	return nil
}

// logOp records an index operation, best effort.
func (m *Manager) logOp(ctx context.Context, op store.IndexOp) {
	if err := m.store.LogIndexOp(ctx, op); err != nil {
		log.Printf("recording index op %s for %s: %v", op.Action, op.SourceID, err)
	}
}
