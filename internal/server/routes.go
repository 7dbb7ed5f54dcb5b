package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voxnote/voxnote/internal/indexer"
	"github.com/voxnote/voxnote/internal/retrieval"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/transcript"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/sources", s.handleListSources)
		r.Get("/ops", s.handleRecentOps)
		r.Post("/search", s.handleSearch)
		r.Post("/ask", s.handleAsk)

		r.Route("/sources/{type}/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSource)
			r.Delete("/", s.handleDeleteSource)
			r.Post("/segments", s.handleIngest)
			r.Get("/segments", s.handleGetSegments)
			r.Put("/summary", s.handlePutSummary)
			r.Get("/summary", s.handleGetSummary)
			r.Post("/summarize", s.handleSummarize)
			r.Patch("/title", s.handleUpdateTitle)
		})
	})
}

func sourceFromURL(r *http.Request) (string, transcript.SourceType, error) {
	typ, err := transcript.ParseSourceType(chi.URLParam(r, "type"))
	if err != nil {
		return "", "", err
	}
	return chi.URLParam(r, "id"), typ, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeOpError maps indexer errors to HTTP status codes.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, indexer.ErrSourceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, indexer.ErrNoSegments):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	var typ transcript.SourceType
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := transcript.ParseSourceType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		typ = parsed
	}

	sources, err := s.store.ListSources(r.Context(), typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sources == nil {
		sources = []transcript.Source{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	src, err := s.store.GetSource(r.Context(), id, typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if src == nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	writeJSON(w, http.StatusOK, src)
}

type ingestRequest struct {
	Title      string               `json:"title"`
	URL        string               `json:"url"`
	Channel    string               `json:"channel"`
	Filename   string               `json:"filename"`
	Duration   float64              `json:"duration"`
	STTService string               `json:"stt_service"`
	Segments   []transcript.Segment `json:"segments"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Segments) == 0 {
		writeError(w, http.StatusBadRequest, "segments are required")
		return
	}

	source := transcript.Source{
		ID:         id,
		Type:       typ,
		Title:      req.Title,
		URL:        req.URL,
		Channel:    req.Channel,
		Filename:   req.Filename,
		Duration:   req.Duration,
		STTService: req.STTService,
	}
	res, err := s.manager.StoreChunks(r.Context(), source, req.Segments)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetSegments(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	var segments []transcript.Segment
	switch {
	case q.Get("speaker") != "":
		segments, err = s.store.SegmentsBySpeaker(r.Context(), id, typ, q.Get("speaker"))
	case q.Get("start") != "" || q.Get("end") != "":
		start, perr := parseFloatDefault(q.Get("start"), 0)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid start")
			return
		}
		end, perr := parseFloatDefault(q.Get("end"), maxDuration)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid end")
			return
		}
		segments, err = s.store.SegmentsByTimeRange(r.Context(), id, typ, start, end)
	default:
		segments, err = s.store.Segments(r.Context(), id, typ)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if segments == nil {
		segments = []transcript.Segment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": segments})
}

// maxDuration is an upper bound for open-ended time range queries.
const maxDuration = math.MaxFloat64

func parseFloatDefault(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

type summaryRequest struct {
	Summary string `json:"summary"`
}

func (s *Server) handlePutSummary(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Summary == "" {
		writeError(w, http.StatusBadRequest, "summary is required")
		return
	}

	res, err := s.manager.StoreSummary(r.Context(), id, typ, req.Summary)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.manager.GetSummary(r.Context(), id, typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == "" {
		writeError(w, http.StatusNotFound, "no summary for source")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := s.store.GetSource(r.Context(), id, typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if src == nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	segments, err := s.store.Segments(r.Context(), id, typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), *src, segments)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	res, err := s.manager.StoreSummary(r.Context(), id, typ, summary)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary, "stored": res.Stored})
}

type titleRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	if err := s.manager.UpdateTitle(r.Context(), id, typ, req.Title); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": req.Title})
}

type deleteResponse struct {
	DeletedFromMetadata bool   `json:"deleted_from_metadata"`
	ChunksRemoved       int    `json:"chunks_removed"`
	SummariesRemoved    int    `json:"summaries_removed"`
	IndexError          string `json:"index_error,omitempty"`
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, typ, err := sourceFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.manager.DeleteSource(r.Context(), id, typ)
	if err != nil {
		writeOpError(w, err)
		return
	}
	resp := deleteResponse{
		DeletedFromMetadata: res.MetadataRemoved,
		ChunksRemoved:       res.ChunksRemoved,
		SummariesRemoved:    res.SummariesRemoved,
	}
	if res.IndexError != nil {
		resp.IndexError = res.IndexError.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type searchRequest struct {
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Scope      string `json:"scope"` // "chunks" (default) or "summaries"
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	opts, err := searchOptions(req.Limit, req.SourceType, req.SourceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var results any
	switch req.Scope {
	case "", "chunks":
		results, err = s.engine.SearchChunks(r.Context(), req.Query, opts)
	case "summaries":
		results, err = s.engine.SearchSummaries(r.Context(), req.Query, req.Limit)
	default:
		writeError(w, http.StatusBadRequest, "scope must be chunks or summaries")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type askRequest struct {
	Question     string `json:"question"`
	Limit        int    `json:"limit"`
	SummaryLimit *int   `json:"summary_limit"` // 0 skips summary retrieval
	SourceType   string `json:"source_type"`
	SourceID     string `json:"source_id"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	opts := retrieval.AskOptions{
		ChunkLimit:   req.Limit,
		SummaryLimit: req.SummaryLimit,
		SourceID:     req.SourceID,
	}
	if req.SourceType != "" {
		typ, err := transcript.ParseSourceType(req.SourceType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.SourceType = typ
	}

	answer, err := s.engine.Ask(r.Context(), req.Question, opts)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyAnswer) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func searchOptions(limit int, sourceType, sourceID string) (retrieval.SearchOptions, error) {
	opts := retrieval.SearchOptions{Limit: limit, SourceID: sourceID}
	if sourceType != "" {
		typ, err := transcript.ParseSourceType(sourceType)
		if err != nil {
			return opts, err
		}
		opts.SourceType = typ
	}
	return opts, nil
}

func (s *Server) handleRecentOps(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ops, err := s.store.RecentIndexOps(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ops == nil {
		ops = []store.IndexOp{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"operations": ops})
}
