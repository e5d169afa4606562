package handler

import (
	"errors"
	"net/http"
	"strconv"

	"TutorCerdas/internal/dto"
	"TutorCerdas/internal/indexer"
	"TutorCerdas/internal/model"
	"TutorCerdas/internal/service"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload 上传文档
// POST /documents/upload
// Form-Data: file=BINARY, title? (默认用原始文件名)
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	doc, err := h.svc.Upload(c.Request.Context(), fileHeader, c.PostForm("title"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResp{OK: true, Document: doc})
}

// List 文档列表 (created_at 倒序，最多 50 条)
// GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.svc.List()
	if err != nil {
		h.writeError(c, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	c.JSON(http.StatusOK, dto.ListResp{Items: docs})
}

// Rebuild 重建文档的 chunk
// POST /documents/rebuild/:id
// local 模式本进程跑流水线；proxy 模式转发给 Indexer 并中继上游结果
func (h *DocumentHandler) Rebuild(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	if h.svc.ProxyMode() {
		res, err := h.svc.RebuildProxy(c.Request.Context(), uint(id))
		if err != nil {
			h.writeError(c, err)
			return
		}
		// 上游的状态码和响应体原样中继
		c.JSON(res.Status, res.Body)
		return
	}

	pages, chunks, err := h.svc.RebuildLocal(c.Request.Context(), uint(id))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RebuildResp{OK: true, Pages: pages, Chunks: chunks})
}

// Chunks chunk 分页
// GET /documents/:id/chunks?limit=50&offset=0
func (h *DocumentHandler) Chunks(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, count, err := h.svc.Chunks(uint(id), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []model.Chunk{}
	}
	c.JSON(http.StatusOK, dto.ChunksResp{Items: items, Count: count, Limit: limit, Offset: offset})
}

// Preview 前 n 个 chunk 的纯文本拼接
// GET /documents/:id/preview?n=10
func (h *DocumentHandler) Preview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))

	text, err := h.svc.Preview(uint(id), n)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// writeError 错误分类 → HTTP 状态码
// 校验 400 / 未找到 404 / rebuild 冲突 409 / 配置缺失与上游失败 500
func (h *DocumentHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case errors.Is(err, service.ErrNoStoragePath):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no storage_path; re-upload file"})
	case errors.Is(err, service.ErrFileRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
	case errors.Is(err, service.ErrRebuildInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "rebuild already in progress"})
	case errors.Is(err, indexer.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INDEXER_URL not set"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
