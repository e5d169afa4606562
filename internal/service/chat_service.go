package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TutorCerdas/internal/dto"
	"TutorCerdas/internal/indexer"
	"TutorCerdas/internal/llm"
)

var ErrQuestionRequired = errors.New("question is required")

const (
	defaultTopK = 6
	minTopK     = 3
	maxTopK     = 10
)

// Retriever 语义检索
type Retriever interface {
	Search(ctx context.Context, question string, topK int) ([]indexer.ContextItem, error)
}

// ChatService 检索增强问答
// 检索失败绝不进入生成环节；生成凭证缺失时走降级模式 (不是错误)
type ChatService struct {
	retriever Retriever
	generator llm.Generator // nil 表示未配置凭证，进入降级模式

	fallbackNotice string // 降级模式的提示语
	notFoundAnswer string // 模型在上下文中找不到答案时的固定回复
}

func NewChatService(retriever Retriever, generator llm.Generator, fallbackNotice, notFoundAnswer string) *ChatService {
	return &ChatService{
		retriever:      retriever,
		generator:      generator,
		fallbackNotice: fallbackNotice,
		notFoundAnswer: notFoundAnswer,
	}
}

// Ask 问答主流程：检索 → 组 prompt → 生成 (或降级)
func (s *ChatService) Ask(ctx context.Context, req dto.AskReq) (*dto.AskResp, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrQuestionRequired
	}

	// 1. 检索 top-k 上下文
	contexts, err := s.retriever.Search(ctx, req.Question, clampTopK(req.TopK))
	if err != nil {
		return nil, err
	}

	// 2. 降级模式：没配生成凭证就直接把原文上下文当答案返回
	if s.generator == nil {
		return &dto.AskResp{
			Answer:  s.fallbackNotice,
			Sources: contexts,
		}, nil
	}

	// 3. 调用生成服务 (单次，不重试)，空回复落到固定兜底语
	answer, err := s.generator.Generate(ctx, s.buildPrompt(req.Question, contexts))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %v", err)
	}
	if strings.TrimSpace(answer) == "" {
		answer = s.notFoundAnswer
	}

	// 4. 规范化来源列表，citation index 与 prompt 中的编号一致
	sources := make([]dto.Source, len(contexts))
	for i, c := range contexts {
		sources[i] = dto.Source{
			ID:         fmt.Sprintf("%d:%d", c.DocumentID, c.ChunkIndex),
			Index:      i + 1,
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Similarity: c.Similarity,
		}
	}

	return &dto.AskResp{Answer: answer, Sources: sources}, nil
}

// buildPrompt 源文引用式 prompt：只允许用给定上下文作答，
// 找不到就回固定兜底语，每条上下文带稳定的引用编号
func (s *ChatService) buildPrompt(question string, contexts []indexer.ContextItem) string {
	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		blocks[i] = fmt.Sprintf("[%d] (doc:%d #%d)\n%s", i+1, c.DocumentID, c.ChunkIndex, c.Content)
	}

	return strings.Join([]string{
		`Kamu adalah "Tutor Cerdas". Jawab singkat, jelas, dan dalam Bahasa Indonesia.`,
		`Jawab HANYA berdasarkan "KONTEKS" berikut. Jika tidak ada jawabannya di konteks,`,
		fmt.Sprintf(`balas: "%s" Jangan mengarang.`, s.notFoundAnswer),
		``,
		"KONTEKS:\n" + strings.Join(blocks, "\n\n---\n\n"),
		``,
		"PERTANYAAN: " + question,
	}, "\n")
}

func clampTopK(k int) int {
	switch {
	case k == 0:
		return defaultTopK
	case k < minTopK:
		return minTopK
	case k > maxTopK:
		return maxTopK
	}
	return k
}
