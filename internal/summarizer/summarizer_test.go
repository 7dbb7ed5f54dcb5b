package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxnote/voxnote/internal/llm"
	"github.com/voxnote/voxnote/internal/transcript"
)

type scriptedProvider struct {
	response string
	lastUser string
}

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			p.lastUser = m.Content
		}
	}
	return &llm.CompletionResponse{Content: p.response, Model: req.Model}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func testSegments() []transcript.Segment {
	return []transcript.Segment{
		{ID: 0, Speaker: "진행자", StartTime: 0, Text: "오늘 회의를 시작합니다"},
		{ID: 1, Speaker: "김철수", StartTime: 15.5, Text: "예산안을 검토하겠습니다"},
		{ID: 2, Speaker: "진행자", StartTime: 42, Text: "  "},
	}
}

func TestSummarize(t *testing.T) {
	provider := &scriptedProvider{response: "## 예산\n\n예산안이 검토되었다."}
	s := New(provider, "test-model")

	source := transcript.Source{ID: "video123", Type: transcript.SourceYouTube, Title: "주간 회의", Channel: "사내 채널"}
	summary, err := s.Summarize(context.Background(), source, testSegments())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "## 예산\n\n예산안이 검토되었다." {
		t.Errorf("summary = %q", summary)
	}

	for _, want := range []string{
		"주간 회의",
		"Channel: 사내 채널",
		"[15.5s] 김철수: 예산안을 검토하겠습니다",
	} {
		if !strings.Contains(provider.lastUser, want) {
			t.Errorf("prompt missing %q:\n%s", want, provider.lastUser)
		}
	}
	// Blank segments stay out of the prompt.
	if strings.Contains(provider.lastUser, "[42.0s]") {
		t.Errorf("blank segment leaked into prompt:\n%s", provider.lastUser)
	}
}

func TestSummarizeEmptyResponse(t *testing.T) {
	s := New(&scriptedProvider{response: "\n  "}, "test-model")
	source := transcript.Source{ID: "video123", Type: transcript.SourceYouTube}

	if _, err := s.Summarize(context.Background(), source, testSegments()); !errors.Is(err, ErrEmptySummary) {
		t.Errorf("err = %v, want ErrEmptySummary", err)
	}
}

func TestSummarizeNoSegments(t *testing.T) {
	s := New(&scriptedProvider{response: "요약"}, "test-model")
	source := transcript.Source{ID: "video123", Type: transcript.SourceYouTube}

	if _, err := s.Summarize(context.Background(), source, nil); err == nil {
		t.Error("expected error for empty transcript")
	}
}
