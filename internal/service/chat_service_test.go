package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"TutorCerdas/internal/dto"
	"TutorCerdas/internal/indexer"
)

const (
	testFallback = "GEN_API_KEY belum di-set. Berikut konteks terdekat."
	testNotFound = "Tidak ditemukan di materi."
)

type fakeRetriever struct {
	items []indexer.ContextItem
	err   error
	topK  int
}

func (r *fakeRetriever) Search(ctx context.Context, question string, topK int) ([]indexer.ContextItem, error) {
	r.topK = topK
	if r.err != nil {
		return nil, r.err
	}
	return r.items, nil
}

type fakeGenerator struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func sampleContexts() []indexer.ContextItem {
	return []indexer.ContextItem{
		{DocumentID: 1, ChunkIndex: 0, Content: "TCP adalah protokol transport.", Similarity: 0.92},
		{DocumentID: 2, ChunkIndex: 4, Content: "Three-way handshake.", Similarity: 0.81},
	}
}

func TestAskDegradedMode(t *testing.T) {
	retriever := &fakeRetriever{items: sampleContexts()}
	// generator == nil → 凭证未配置，降级返回原文上下文
	svc := NewChatService(retriever, nil, testFallback, testNotFound)

	resp, err := svc.Ask(context.Background(), dto.AskReq{Question: "apa itu TCP?"})
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if resp.Answer != testFallback {
		t.Errorf("degraded answer must equal the fallback notice, got %q", resp.Answer)
	}
	sources, ok := resp.Sources.([]indexer.ContextItem)
	if !ok {
		t.Fatalf("degraded sources must be the raw retrieval items, got %T", resp.Sources)
	}
	if len(sources) != 2 || sources[0].Content != "TCP adalah protokol transport." {
		t.Errorf("raw contexts not passed through: %+v", sources)
	}
}

func TestAskRetrievalFailureSkipsGeneration(t *testing.T) {
	retriever := &fakeRetriever{err: indexer.ErrRetrieval}
	gen := &fakeGenerator{answer: "should never be produced"}
	svc := NewChatService(retriever, gen, testFallback, testNotFound)

	_, err := svc.Ask(context.Background(), dto.AskReq{Question: "q"})
	if !errors.Is(err, indexer.ErrRetrieval) {
		t.Fatalf("expected retrieval error to surface, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("generation service must not be called when retrieval fails")
	}
}

func TestAskGeneratedAnswerWithNormalizedSources(t *testing.T) {
	retriever := &fakeRetriever{items: sampleContexts()}
	gen := &fakeGenerator{answer: "TCP adalah protokol transport yang andal [1]."}
	svc := NewChatService(retriever, gen, testFallback, testNotFound)

	resp, err := svc.Ask(context.Background(), dto.AskReq{Question: "apa itu TCP?"})
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if resp.Answer != gen.answer {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}

	sources, ok := resp.Sources.([]dto.Source)
	if !ok {
		t.Fatalf("expected normalized sources, got %T", resp.Sources)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	want := dto.Source{ID: "1:0", Index: 1, DocumentID: 1, ChunkIndex: 0, Similarity: 0.92}
	if sources[0] != want {
		t.Errorf("first source mismatch: %+v", sources[0])
	}
	if sources[1].Index != 2 || sources[1].ID != "2:4" {
		t.Errorf("second source mismatch: %+v", sources[1])
	}
}

func TestAskEmptyGenerationFallsBack(t *testing.T) {
	retriever := &fakeRetriever{items: sampleContexts()}
	gen := &fakeGenerator{answer: "  "}
	svc := NewChatService(retriever, gen, testFallback, testNotFound)

	resp, err := svc.Ask(context.Background(), dto.AskReq{Question: "q"})
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if resp.Answer != testNotFound {
		t.Errorf("empty generation must fall back to %q, got %q", testNotFound, resp.Answer)
	}
}

func TestAskGenerationCalledOnce(t *testing.T) {
	retriever := &fakeRetriever{items: sampleContexts()}
	gen := &fakeGenerator{err: errors.New("rate limited")}
	svc := NewChatService(retriever, gen, testFallback, testNotFound)

	if _, err := svc.Ask(context.Background(), dto.AskReq{Question: "q"}); err == nil {
		t.Fatal("generation failure must surface")
	}
	if gen.calls != 1 {
		t.Errorf("no retries allowed, got %d calls", gen.calls)
	}
}

func TestAskPromptShape(t *testing.T) {
	retriever := &fakeRetriever{items: sampleContexts()}
	gen := &fakeGenerator{answer: "ok"}
	svc := NewChatService(retriever, gen, testFallback, testNotFound)

	if _, err := svc.Ask(context.Background(), dto.AskReq{Question: "apa itu TCP?"}); err != nil {
		t.Fatalf("ask failed: %v", err)
	}

	prompt := gen.prompt
	// 只允许用上下文作答 + 固定兜底语 + 稳定引用编号
	for _, must := range []string{
		`Jawab HANYA berdasarkan "KONTEKS"`,
		fmt.Sprintf("balas: %q", testNotFound),
		"[1] (doc:1 #0)\nTCP adalah protokol transport.",
		"[2] (doc:2 #4)\nThree-way handshake.",
		"PERTANYAAN: apa itu TCP?",
	} {
		if !strings.Contains(prompt, must) {
			t.Errorf("prompt missing %q\nprompt:\n%s", must, prompt)
		}
	}
}

func TestAskQuestionRequired(t *testing.T) {
	svc := NewChatService(&fakeRetriever{}, nil, testFallback, testNotFound)
	if _, err := svc.Ask(context.Background(), dto.AskReq{Question: "  "}); !errors.Is(err, ErrQuestionRequired) {
		t.Errorf("expected ErrQuestionRequired, got %v", err)
	}
}

func TestAskTopKBounds(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 6}, {1, 3}, {3, 3}, {6, 6}, {10, 10}, {50, 10},
	}
	for _, tc := range cases {
		retriever := &fakeRetriever{items: sampleContexts()}
		svc := NewChatService(retriever, nil, testFallback, testNotFound)
		if _, err := svc.Ask(context.Background(), dto.AskReq{Question: "q", TopK: tc.in}); err != nil {
			t.Fatalf("ask failed: %v", err)
		}
		if retriever.topK != tc.want {
			t.Errorf("top_k %d: expected clamp to %d, got %d", tc.in, tc.want, retriever.topK)
		}
	}
}
