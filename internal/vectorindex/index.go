package vectorindex

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/philippgille/chromem-go"

	"github.com/voxnote/voxnote/internal/embeddings"
	"github.com/voxnote/voxnote/internal/transcript"
)

const (
	collectionYouTube   = "youtube_transcripts"
	collectionAudio     = "audio_transcripts"
	collectionSummaries = "summaries"
)

// Index is the vector store for transcript chunks and summaries. Chunks live
// in a per-source-type collection, summaries in a shared one.
type Index struct {
	db        *chromem.DB
	embedder  embeddings.Embedder
	youtube   *chromem.Collection
	audio     *chromem.Collection
	summaries *chromem.Collection
}

// New creates an in-memory index. Used in tests and one-shot CLI runs.
func New(embedder embeddings.Embedder) (*Index, error) {
	return build(chromem.NewDB(), embedder)
}

// Open creates or reopens a persistent index under dataDir.
func Open(dataDir string, embedder embeddings.Embedder) (*Index, error) {
	db, err := chromem.NewPersistentDB(filepath.Join(dataDir, "index"), true)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}
	return build(db, embedder)
}

func build(db *chromem.DB, embedder embeddings.Embedder) (*Index, error) {
	embedFunc := embeddings.ToChromemFunc(embedder)
	idx := &Index{db: db, embedder: embedder}
	var err error
	if idx.youtube, err = db.GetOrCreateCollection(collectionYouTube, nil, embedFunc); err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", collectionYouTube, err)
	}
	if idx.audio, err = db.GetOrCreateCollection(collectionAudio, nil, embedFunc); err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", collectionAudio, err)
	}
	if idx.summaries, err = db.GetOrCreateCollection(collectionSummaries, nil, embedFunc); err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", collectionSummaries, err)
	}
	return idx, nil
}

func (idx *Index) chunkCollection(typ transcript.SourceType) (*chromem.Collection, error) {
	switch typ {
	case transcript.SourceYouTube:
		return idx.youtube, nil
	case transcript.SourceAudio:
		return idx.audio, nil
	}
	return nil, fmt.Errorf("no chunk collection for source type %q", typ)
}

// collectionFor routes a document to its collection by metadata.
func (idx *Index) collectionFor(doc Document) (*chromem.Collection, error) {
	if doc.Metadata == nil {
		return nil, fmt.Errorf("document %s has no metadata", doc.ID)
	}
	if doc.Metadata.DocumentType() == DocSummary {
		return idx.summaries, nil
	}
	_, typ := doc.Metadata.Source()
	return idx.chunkCollection(typ)
}

// AddDocuments inserts documents into their collections, embedding any that
// arrive without a precomputed embedding. Re-adding an existing id replaces
// the stored document.
func (idx *Index) AddDocuments(ctx context.Context, docs []Document) error {
	grouped := map[*chromem.Collection][]chromem.Document{}
	for _, doc := range docs {
		col, err := idx.collectionFor(doc)
		if err != nil {
			return err
		}
		grouped[col] = append(grouped[col], chromem.Document{
			ID:        doc.ID,
			Content:   doc.Text,
			Metadata:  doc.Metadata.toMap(),
			Embedding: doc.Embedding,
		})
	}
	for col, batch := range grouped {
		if err := col.AddDocuments(ctx, batch, runtime.NumCPU()); err != nil {
			return fmt.Errorf("adding %d documents: %w", len(batch), err)
		}
	}
	return nil
}

// SearchChunks runs a similarity search over transcript chunks. sourceType
// narrows to one chunk collection ("" searches both); sourceID narrows to one
// source. The query is embedded once and fanned out. Results are ordered by
// ascending distance, ties broken by segment id.
func (idx *Index) SearchChunks(ctx context.Context, query string, n int, sourceType transcript.SourceType, sourceID string) ([]SearchResult, error) {
	if n <= 0 {
		return nil, nil
	}
	emb, err := idx.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	cols := []*chromem.Collection{idx.youtube, idx.audio}
	if sourceType != "" {
		col, err := idx.chunkCollection(sourceType)
		if err != nil {
			return nil, err
		}
		cols = []*chromem.Collection{col}
	}

	var where map[string]string
	if sourceID != "" {
		where = map[string]string{"source_id": sourceID}
	}

	var results []SearchResult
	for _, col := range cols {
		part, err := idx.queryCollection(ctx, col, emb, n, where)
		if err != nil {
			return nil, err
		}
		results = append(results, part...)
	}
	sortResults(results)
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// SearchSummaries runs a similarity search over the summaries collection.
func (idx *Index) SearchSummaries(ctx context.Context, query string, n int) ([]SearchResult, error) {
	if n <= 0 {
		return nil, nil
	}
	emb, err := idx.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	results, err := idx.queryCollection(ctx, idx.summaries, emb, n, nil)
	if err != nil {
		return nil, err
	}
	sortResults(results)
	return results, nil
}

func (idx *Index) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embs, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return embs[0], nil
}

// queryCollection wraps chromem's QueryEmbedding, capping nResults at the
// collection size since chromem rejects oversized limits.
func (idx *Index) queryCollection(ctx context.Context, col *chromem.Collection, emb []float32, n int, where map[string]string) ([]SearchResult, error) {
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}
	raw, err := col.QueryEmbedding(ctx, emb, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	results := make([]SearchResult, 0, len(raw))
	for _, r := range raw {
		md, err := metadataFromMap(r.Metadata)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", r.ID, err)
		}
		results = append(results, SearchResult{
			Document: Document{
				ID:        r.ID,
				Text:      r.Content,
				Metadata:  md,
				Embedding: r.Embedding,
			},
			Distance: 1 - float64(r.Similarity),
		})
	}
	return results, nil
}

// ListChunks returns every chunk document of one source, ordered by segment
// id, embeddings included. Listing queries with a fixed probe vector instead
// of calling the embedding provider.
func (idx *Index) ListChunks(ctx context.Context, sourceID string, sourceType transcript.SourceType) ([]Document, error) {
	col, err := idx.chunkCollection(sourceType)
	if err != nil {
		return nil, err
	}
	docs, err := idx.listCollection(ctx, col, sourceID)
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Metadata.(ChunkMetadata).SegmentID < docs[j].Metadata.(ChunkMetadata).SegmentID
	})
	return docs, nil
}

// ListSummaries returns every summary document of one source, ordered by
// subtopic index.
func (idx *Index) ListSummaries(ctx context.Context, sourceID string) ([]Document, error) {
	docs, err := idx.listCollection(ctx, idx.summaries, sourceID)
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Metadata.(SummaryMetadata).SubtopicIndex < docs[j].Metadata.(SummaryMetadata).SubtopicIndex
	})
	return docs, nil
}

func (idx *Index) listCollection(ctx context.Context, col *chromem.Collection, sourceID string) ([]Document, error) {
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	raw, err := col.QueryEmbedding(ctx, idx.probeVector(), count, map[string]string{"source_id": sourceID}, nil)
	if err != nil {
		return nil, fmt.Errorf("listing source %s: %w", sourceID, err)
	}
	docs := make([]Document, 0, len(raw))
	for _, r := range raw {
		md, err := metadataFromMap(r.Metadata)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", r.ID, err)
		}
		docs = append(docs, Document{
			ID:        r.ID,
			Text:      r.Content,
			Metadata:  md,
			Embedding: r.Embedding,
		})
	}
	return docs, nil
}

// probeVector is a unit vector used for listing queries, where ranking does
// not matter and an embedding provider call would be wasted.
func (idx *Index) probeVector() []float32 {
	vec := make([]float32, idx.embedder.Dimensions())
	vec[0] = 1
	return vec
}

// DeleteChunks removes all chunk documents of a source and reports how many
// were removed.
func (idx *Index) DeleteChunks(ctx context.Context, sourceID string, sourceType transcript.SourceType) (int, error) {
	col, err := idx.chunkCollection(sourceType)
	if err != nil {
		return 0, err
	}
	return idx.deleteBySource(ctx, col, sourceID)
}

// DeleteSummaries removes all summary documents of a source and reports how
// many were removed.
func (idx *Index) DeleteSummaries(ctx context.Context, sourceID string) (int, error) {
	return idx.deleteBySource(ctx, idx.summaries, sourceID)
}

func (idx *Index) deleteBySource(ctx context.Context, col *chromem.Collection, sourceID string) (int, error) {
	// chromem's Delete does not report a count, so list first.
	docs, err := idx.listCollection(ctx, col, sourceID)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := col.Delete(ctx, map[string]string{"source_id": sourceID}, nil); err != nil {
		return 0, fmt.Errorf("deleting source %s: %w", sourceID, err)
	}
	return len(docs), nil
}

// Count reports the total number of indexed documents across all collections.
func (idx *Index) Count() int {
	return idx.youtube.Count() + idx.audio.Count() + idx.summaries.Count()
}

// ChunkCount reports the number of chunk documents for one source type.
func (idx *Index) ChunkCount(typ transcript.SourceType) (int, error) {
	col, err := idx.chunkCollection(typ)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

func sortResults(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		ci, iOK := results[i].Document.Metadata.(ChunkMetadata)
		cj, jOK := results[j].Document.Metadata.(ChunkMetadata)
		if iOK && jOK {
			return ci.SegmentID < cj.SegmentID
		}
		return results[i].Document.ID < results[j].Document.ID
	})
}
