package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voxnote/voxnote/internal/embeddings/embeddertest"
	"github.com/voxnote/voxnote/internal/indexer"
	"github.com/voxnote/voxnote/internal/llm"
	"github.com/voxnote/voxnote/internal/retrieval"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/summarizer"
	"github.com/voxnote/voxnote/internal/vectorindex"
)

// scriptedProvider answers every completion with a fixed string.
type scriptedProvider struct {
	response string
}

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: p.response, Model: req.Model}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func testServer(t *testing.T, llmResponse string) *Server {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	embedder := embeddertest.New(64)
	idx, err := vectorindex.New(embedder)
	if err != nil {
		t.Fatalf("vectorindex.New: %v", err)
	}

	provider := &scriptedProvider{response: llmResponse}
	manager := indexer.New(st, idx, embedder, 2000)
	engine := retrieval.New(idx, provider, "test-model", 5, 3)
	summ := summarizer.New(provider, "test-model")

	return New(Config{Port: 0}, st, manager, engine, summ)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

const ingestBody = `{
	"title": "주간 회의",
	"url": "https://youtube.com/watch?v=video123",
	"channel": "사내 채널",
	"segments": [
		{"id": 0, "speaker": "진행자", "start_time": 0, "end_time": 15.5, "text": "오늘 회의를 시작합니다", "confidence": 0.95},
		{"id": 1, "speaker": "김철수", "start_time": 15.5, "end_time": 42, "text": "예산안을 검토하겠습니다", "confidence": 0.9},
		{"id": 2, "speaker": "진행자", "start_time": 42, "text": "다음 주까지 제출해주세요", "confidence": 0.92}
	]
}`

func TestHealthCheck(t *testing.T) {
	srv := testServer(t, "ok")

	w := doJSON(t, srv, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := testServer(t, "ok")
	srv.cfg.AllowAll = true
	srv.router = srv.buildRouter()

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

// TestIndexSearchDeleteFlow walks the main lifecycle: ingest a video
// transcript, search it, delete the source, search again.
func TestIndexSearchDeleteFlow(t *testing.T) {
	srv := testServer(t, "ok")

	w := doJSON(t, srv, "POST", "/api/sources/youtube/video123/segments", ingestBody)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stored indexer.StoreResult
	if err := json.Unmarshal(w.Body.Bytes(), &stored); err != nil {
		t.Fatalf("unmarshal ingest response: %v", err)
	}
	if stored.Stored != 3 {
		t.Errorf("stored %d chunks, want 3", stored.Stored)
	}

	w = doJSON(t, srv, "POST", "/api/search", `{"query": "예산"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var searchResp struct {
		Results []struct {
			Document struct {
				ID       string `json:"id"`
				Text     string `json:"text"`
				Metadata struct {
					SegmentID int    `json:"segment_id"`
					Speaker   string `json:"speaker"`
				} `json:"metadata"`
			} `json:"document"`
			Distance float64 `json:"distance"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &searchResp); err != nil {
		t.Fatalf("unmarshal search response: %v", err)
	}
	if len(searchResp.Results) != 3 {
		t.Fatalf("search returned %d results, want 3", len(searchResp.Results))
	}
	top := searchResp.Results[0].Document
	if top.Metadata.SegmentID != 1 || top.Metadata.Speaker != "김철수" {
		t.Errorf("top result is segment %d by %q, want seg 1 by 김철수", top.Metadata.SegmentID, top.Metadata.Speaker)
	}

	w = doJSON(t, srv, "DELETE", "/api/sources/youtube/video123", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var deleted deleteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("unmarshal delete response: %v", err)
	}
	if deleted.ChunksRemoved != 3 {
		t.Errorf("delete removed %d chunks, want 3", deleted.ChunksRemoved)
	}
	if !deleted.DeletedFromMetadata {
		t.Error("delete response should report the metadata record as removed")
	}

	w = doJSON(t, srv, "POST", "/api/search", `{"query": "예산"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("post-delete search: expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &searchResp); err != nil {
		t.Fatalf("unmarshal post-delete search: %v", err)
	}
	if len(searchResp.Results) != 0 {
		t.Errorf("search after delete returned %d results", len(searchResp.Results))
	}

	w = doJSON(t, srv, "DELETE", "/api/sources/youtube/video123", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
}

func TestSummaryLifecycle(t *testing.T) {
	srv := testServer(t, "## 예산\n\n예산안 검토 일정이 확정되었다.")

	if w := doJSON(t, srv, "POST", "/api/sources/youtube/video123/segments", ingestBody); w.Code != http.StatusOK {
		t.Fatalf("ingest: %d: %s", w.Code, w.Body.String())
	}

	// No summary yet.
	if w := doJSON(t, srv, "GET", "/api/sources/youtube/video123/summary", ""); w.Code != http.StatusNotFound {
		t.Errorf("summary before summarize: expected 404, got %d", w.Code)
	}

	w := doJSON(t, srv, "POST", "/api/sources/youtube/video123/summarize", "")
	if w.Code != http.StatusOK {
		t.Fatalf("summarize: %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "GET", "/api/sources/youtube/video123/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get summary: %d: %s", w.Code, w.Body.String())
	}
	var summaryResp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &summaryResp); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summaryResp["summary"] != "## 예산\n\n예산안 검토 일정이 확정되었다." {
		t.Errorf("summary = %q", summaryResp["summary"])
	}

	// Manual replacement through PUT.
	if w := doJSON(t, srv, "PUT", "/api/sources/youtube/video123/summary", `{"summary": "수동 요약입니다."}`); w.Code != http.StatusOK {
		t.Fatalf("put summary: %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, srv, "GET", "/api/sources/youtube/video123/summary", "")
	if err := json.Unmarshal(w.Body.Bytes(), &summaryResp); err != nil {
		t.Fatalf("unmarshal replaced summary: %v", err)
	}
	if summaryResp["summary"] != "수동 요약입니다." {
		t.Errorf("replaced summary = %q", summaryResp["summary"])
	}
}

func TestAskEndpoint(t *testing.T) {
	srv := testServer(t, "예산안은 다음 주까지 제출됩니다.")

	if w := doJSON(t, srv, "POST", "/api/sources/youtube/video123/segments", ingestBody); w.Code != http.StatusOK {
		t.Fatalf("ingest: %d", w.Code)
	}

	w := doJSON(t, srv, "POST", "/api/ask", `{"question": "예산 일정이 어떻게 되나요?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("ask: %d: %s", w.Code, w.Body.String())
	}
	// Decode into a local mirror of retrieval.Answer: the evidence documents
	// carry interface-typed metadata that encoding/json cannot unmarshal.
	var answer struct {
		Answer       string            `json:"answer"`
		Summaries    []json.RawMessage `json:"summaries"`
		Chunks       []json.RawMessage `json:"chunks"`
		SummaryCount int               `json:"summary_results_count"`
		ChunkCount   int               `json:"chunk_results_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &answer); err != nil {
		t.Fatalf("unmarshal answer: %v", err)
	}
	if answer.Answer != "예산안은 다음 주까지 제출됩니다." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if len(answer.Chunks) == 0 {
		t.Error("answer carries no chunk evidence")
	}
	if answer.ChunkCount != len(answer.Chunks) || answer.SummaryCount != len(answer.Summaries) {
		t.Errorf("result counts %d/%d do not match evidence %d/%d",
			answer.SummaryCount, answer.ChunkCount, len(answer.Summaries), len(answer.Chunks))
	}

	// summary_limit 0 turns off summary retrieval for this request only.
	w = doJSON(t, srv, "POST", "/api/ask", `{"question": "예산은?", "summary_limit": 0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("ask with summary_limit 0: %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &answer); err != nil {
		t.Fatalf("unmarshal answer: %v", err)
	}
	if answer.SummaryCount != 0 || len(answer.Summaries) != 0 {
		t.Errorf("summary_limit 0 still returned %d summaries", len(answer.Summaries))
	}
	if len(answer.Chunks) == 0 {
		t.Error("chunk retrieval should be unaffected by summary_limit")
	}
}

func TestSegmentQueries(t *testing.T) {
	srv := testServer(t, "ok")

	if w := doJSON(t, srv, "POST", "/api/sources/youtube/video123/segments", ingestBody); w.Code != http.StatusOK {
		t.Fatalf("ingest: %d", w.Code)
	}

	var resp struct {
		Segments []struct {
			ID      int    `json:"id"`
			Speaker string `json:"speaker"`
		} `json:"segments"`
	}

	w := doJSON(t, srv, "GET", "/api/sources/youtube/video123/segments?speaker=진행자", "")
	if w.Code != http.StatusOK {
		t.Fatalf("speaker query: %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Segments) != 2 {
		t.Errorf("speaker query returned %d segments, want 2", len(resp.Segments))
	}

	w = doJSON(t, srv, "GET", "/api/sources/youtube/video123/segments?start=10&end=43", "")
	if w.Code != http.StatusOK {
		t.Fatalf("time range query: %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Segments) != 2 {
		t.Errorf("time range query returned %d segments, want 2", len(resp.Segments))
	}
}

func TestUpdateTitleEndpoint(t *testing.T) {
	srv := testServer(t, "ok")

	if w := doJSON(t, srv, "POST", "/api/sources/youtube/video123/segments", ingestBody); w.Code != http.StatusOK {
		t.Fatalf("ingest: %d", w.Code)
	}

	if w := doJSON(t, srv, "PATCH", "/api/sources/youtube/video123/title", `{"title": "예산 회의"}`); w.Code != http.StatusOK {
		t.Fatalf("patch title: %d: %s", w.Code, w.Body.String())
	}

	w := doJSON(t, srv, "GET", "/api/sources/youtube/video123", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get source: %d", w.Code)
	}
	var src struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &src); err != nil {
		t.Fatalf("unmarshal source: %v", err)
	}
	if src.Title != "예산 회의" {
		t.Errorf("title = %q", src.Title)
	}

	if w := doJSON(t, srv, "PATCH", "/api/sources/youtube/ghost/title", `{"title": "x"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown source: expected 404, got %d", w.Code)
	}
}

func TestRecentOpsEndpoint(t *testing.T) {
	srv := testServer(t, "ok")

	// Before any ingest the log is an empty array, not null.
	w := doJSON(t, srv, "GET", "/api/ops", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ops: %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Operations []store.IndexOp `json:"operations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal ops: %v", err)
	}
	if resp.Operations == nil || len(resp.Operations) != 0 {
		t.Errorf("fresh log: got %v, want empty list", resp.Operations)
	}
	if !strings.Contains(w.Body.String(), `"operations":[]`) {
		t.Errorf("fresh log should serialize as an empty array: %s", w.Body.String())
	}

	if w := doJSON(t, srv, "POST", "/api/sources/youtube/video123/segments", ingestBody); w.Code != http.StatusOK {
		t.Fatalf("ingest: %d", w.Code)
	}

	w = doJSON(t, srv, "GET", "/api/ops?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ops after ingest: %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal ops: %v", err)
	}
	if len(resp.Operations) != 1 {
		t.Fatalf("ops after ingest: got %d, want 1", len(resp.Operations))
	}
	if resp.Operations[0].Action != store.ActionStoreChunks || resp.Operations[0].DocumentCount != 3 {
		t.Errorf("logged op = %+v", resp.Operations[0])
	}
}

func TestBadRequests(t *testing.T) {
	srv := testServer(t, "ok")

	cases := []struct {
		name, method, path, body string
	}{
		{"bad source type", "POST", "/api/sources/podcast/x/segments", `{"segments": [{"id": 0, "text": "a"}]}`},
		{"no segments", "POST", "/api/sources/youtube/x/segments", `{"segments": []}`},
		{"empty query", "POST", "/api/search", `{"query": ""}`},
		{"bad scope", "POST", "/api/search", `{"query": "q", "scope": "everything"}`},
		{"empty question", "POST", "/api/ask", `{"question": ""}`},
		{"bad list type", "GET", "/api/sources?type=podcast", ""},
	}
	for _, c := range cases {
		if w := doJSON(t, srv, c.method, c.path, c.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.name, w.Code)
		}
	}
}
