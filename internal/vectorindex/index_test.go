package vectorindex

import (
	"context"
	"testing"
	"time"

	"github.com/voxnote/voxnote/internal/embeddings/embeddertest"
	"github.com/voxnote/voxnote/internal/transcript"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(embeddertest.New(64))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx
}

func f(v float64) *float64 { return &v }

func meetingChunks(sourceID string) []Document {
	texts := []string{
		"오늘 회의를 시작합니다",
		"예산안을 검토하겠습니다",
		"다음 주까지 제출해주세요",
	}
	speakers := []string{"진행자", "김철수", "진행자"}
	starts := []float64{0, 15.5, 42}
	ends := []*float64{f(15.5), f(42), nil}

	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{
			ID:   ChunkDocID(sourceID, i),
			Text: text,
			Metadata: ChunkMetadata{
				SourceID:   sourceID,
				SourceType: transcript.SourceYouTube,
				SegmentID:  i,
				Speaker:    speakers[i],
				StartTime:  starts[i],
				EndTime:    ends[i],
				Confidence: 0.95,
				Title:      "주간 회의",
			},
		}
	}
	return docs
}

func TestSearchChunksRanking(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	if err := idx.AddDocuments(ctx, meetingChunks("video123")); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := idx.SearchChunks(ctx, "예산", 3, "", "")
	if err != nil {
		t.Fatalf("SearchChunks: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	top := results[0].Document.Metadata.(ChunkMetadata)
	if top.SegmentID != 1 {
		t.Errorf("top result is segment %d, want 1 (budget segment)", top.SegmentID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("results not sorted by distance: %f before %f", results[i-1].Distance, results[i].Distance)
		}
	}
}

func TestSearchChunksFilters(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	docs := meetingChunks("video123")
	docs = append(docs, Document{
		ID:   ChunkDocID("rec001", 0),
		Text: "예산 관련 음성 메모입니다",
		Metadata: ChunkMetadata{
			SourceID:   "rec001",
			SourceType: transcript.SourceAudio,
			SegmentID:  0,
			Speaker:    "화자1",
			StartTime:  0,
			Confidence: 0.8,
		},
	})
	if err := idx.AddDocuments(ctx, docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	audioOnly, err := idx.SearchChunks(ctx, "예산", 10, transcript.SourceAudio, "")
	if err != nil {
		t.Fatalf("SearchChunks audio: %v", err)
	}
	if len(audioOnly) != 1 {
		t.Fatalf("audio search returned %d results, want 1", len(audioOnly))
	}
	if _, typ := audioOnly[0].Document.Metadata.Source(); typ != transcript.SourceAudio {
		t.Errorf("audio search returned source type %q", typ)
	}

	oneSource, err := idx.SearchChunks(ctx, "예산", 10, "", "video123")
	if err != nil {
		t.Fatalf("SearchChunks source filter: %v", err)
	}
	for _, r := range oneSource {
		if id, _ := r.Document.Metadata.Source(); id != "video123" {
			t.Errorf("source filter leaked document from %q", id)
		}
	}
	if len(oneSource) != 3 {
		t.Errorf("source filter returned %d results, want 3", len(oneSource))
	}
}

func TestChunkMetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	if err := idx.AddDocuments(ctx, meetingChunks("video123")); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	docs, err := idx.ListChunks(ctx, "video123", transcript.SourceYouTube)
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}

	for i, doc := range docs {
		md := doc.Metadata.(ChunkMetadata)
		if md.SegmentID != i {
			t.Errorf("document %d has segment id %d, listing not ordered", i, md.SegmentID)
		}
		if len(doc.Embedding) == 0 {
			t.Errorf("document %s listed without embedding", doc.ID)
		}
	}

	second := docs[1].Metadata.(ChunkMetadata)
	if second.Speaker != "김철수" || second.StartTime != 15.5 || second.EndTime == nil || *second.EndTime != 42 {
		t.Errorf("segment 1 metadata did not survive round trip: %+v", second)
	}
	last := docs[2].Metadata.(ChunkMetadata)
	if last.EndTime != nil {
		t.Errorf("open-ended segment came back with end_time %v", *last.EndTime)
	}
	if second.Confidence != 0.95 || second.Title != "주간 회의" {
		t.Errorf("confidence/title lost in round trip: %+v", second)
	}
}

func TestSummaryDocuments(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	docs := []Document{
		{
			ID:   SummaryDocID("video123", 1),
			Text: "예산안 검토 일정이 확정되었다.",
			Metadata: SummaryMetadata{
				SourceID:      "video123",
				SourceType:    transcript.SourceYouTube,
				Subtopic:      "예산",
				SubtopicIndex: 1,
				CreatedAt:     created,
			},
		},
		{
			ID:   SummaryDocID("video123", 0),
			Text: "주간 회의가 진행되었다.",
			Metadata: SummaryMetadata{
				SourceID:      "video123",
				SourceType:    transcript.SourceYouTube,
				Subtopic:      GeneralSubtopic,
				SubtopicIndex: 0,
				CreatedAt:     created,
			},
		},
	}
	if err := idx.AddDocuments(ctx, docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := idx.SearchSummaries(ctx, "예산", 5)
	if err != nil {
		t.Fatalf("SearchSummaries: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d summary results, want 2", len(results))
	}
	if results[0].Document.Metadata.(SummaryMetadata).Subtopic != "예산" {
		t.Errorf("budget subtopic not ranked first for budget query")
	}

	listed, err := idx.ListSummaries(ctx, "video123")
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d summaries, want 2", len(listed))
	}
	first := listed[0].Metadata.(SummaryMetadata)
	if first.SubtopicIndex != 0 || first.Subtopic != GeneralSubtopic {
		t.Errorf("summaries not ordered by subtopic index: first is %+v", first)
	}
	if !first.CreatedAt.Equal(created) {
		t.Errorf("created_at lost in round trip: %v", first.CreatedAt)
	}
}

func TestDeleteReportsCount(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	if err := idx.AddDocuments(ctx, meetingChunks("video123")); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	n, err := idx.DeleteChunks(ctx, "video123", transcript.SourceYouTube)
	if err != nil {
		t.Fatalf("DeleteChunks: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d documents, want 3", n)
	}

	// Deleting again is a no-op, not an error.
	n, err = idx.DeleteChunks(ctx, "video123", transcript.SourceYouTube)
	if err != nil {
		t.Fatalf("second DeleteChunks: %v", err)
	}
	if n != 0 {
		t.Errorf("second delete removed %d documents, want 0", n)
	}

	results, err := idx.SearchChunks(ctx, "예산", 5, "", "")
	if err != nil {
		t.Fatalf("SearchChunks after delete: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("search after delete returned %d results", len(results))
	}
}

func TestAddReplacesExistingID(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	docs := meetingChunks("video123")
	if err := idx.AddDocuments(ctx, docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if err := idx.AddDocuments(ctx, docs); err != nil {
		t.Fatalf("re-AddDocuments: %v", err)
	}
	if got := idx.Count(); got != 3 {
		t.Errorf("index holds %d documents after re-add, want 3", got)
	}
}

func TestMetadataFromMapRejectsUnknownType(t *testing.T) {
	if _, err := metadataFromMap(map[string]string{"document_type": "picture"}); err == nil {
		t.Error("expected error for unknown document_type")
	}
}
