package handler

import (
	"errors"
	"net/http"

	"TutorCerdas/internal/dto"
	"TutorCerdas/internal/indexer"
	"TutorCerdas/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Ask 检索增强问答
// POST /chat/ask  {question, role?, top_k?}
func (h *ChatHandler) Ask(c *gin.Context) {
	var req dto.AskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	resp, err := h.svc.Ask(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		case errors.Is(err, indexer.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "INDEXER_URL not set"})
		case errors.Is(err, indexer.ErrRetrieval):
			// 检索失败：502 且绝不进入生成环节
			c.JSON(http.StatusBadGateway, gin.H{"error": "retrieval_failed", "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
