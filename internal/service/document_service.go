package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"TutorCerdas/internal/data"
	"TutorCerdas/internal/extractor"
	"TutorCerdas/internal/indexer"
	"TutorCerdas/internal/model"
	"TutorCerdas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrNoStoragePath     = errors.New("no storage_path; re-upload file")
	ErrFileRequired      = errors.New("file is required")
	ErrRebuildInProgress = errors.New("rebuild already in progress")
)

// Extractor 文本抽取
type Extractor interface {
	Extract(data []byte) (*extractor.Result, error)
}

// Chunker 文本切片
type Chunker interface {
	Chunk(text string) []string
}

// Delegator proxy 模式下承接整条重建流水线的外部服务
type Delegator interface {
	Process(ctx context.Context, documentID uint) (*indexer.ProcessResult, error)
}

// DocumentService 文档摄取流水线
// upload: 存 blob → 落元数据行 (先占路径再提交元数据，失败只会留下孤儿 blob)
// rebuild(local): 取 blob → 抽取 → 切片 → 替换 chunk → 更新状态
// rebuild(proxy): 把 {document_id} 转发给 Indexer，原样中继上游结果
type DocumentService struct {
	docs    repository.DocumentRepository
	chunks  repository.ChunkRepository
	store   data.ObjectStore
	locker  data.DocLocker
	extract Extractor
	chunker Chunker
	idx     Delegator

	rebuildMode string
}

func NewDocumentService(
	docs repository.DocumentRepository,
	chunks repository.ChunkRepository,
	store data.ObjectStore,
	locker data.DocLocker,
	extract Extractor,
	chunker Chunker,
	idx Delegator,
	rebuildMode string,
) *DocumentService {
	return &DocumentService{
		docs:        docs,
		chunks:      chunks,
		store:       store,
		locker:      locker,
		extract:     extract,
		chunker:     chunker,
		idx:         idx,
		rebuildMode: rebuildMode,
	}
}

// ProxyMode rebuild 是否走转发
func (s *DocumentService) ProxyMode() bool {
	return s.rebuildMode == "proxy"
}

// Upload 存储上传文件并创建文档行，status=uploaded
func (s *DocumentService) Upload(ctx context.Context, fileHeader *multipart.FileHeader, title string) (*model.Document, error) {
	if fileHeader == nil {
		return nil, ErrFileRequired
	}

	// 1. 读文件内容
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	blob, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	// 2. 生成存储路径: {year}/{month}/{token}.{ext}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."))
	if ext == "" {
		ext = "pdf"
	}
	now := time.Now().UTC()
	storagePath := fmt.Sprintf("%d/%02d/%s.%s", now.Year(), int(now.Month()), uuid.New().String(), ext)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	// 3. 先写对象存储 (路径被占用会直接失败，绝不覆盖)
	if err := s.store.Upload(ctx, storagePath, blob, contentType); err != nil {
		return nil, err
	}

	// 4. 再落元数据行
	// 这一步失败只会留下一个孤儿 blob，不会出现指向空 blob 的元数据
	if title == "" {
		title = fileHeader.Filename
	}
	metaJSON, _ := json.Marshal(map[string]string{
		"original_name": fileHeader.Filename,
		"ext":           ext,
		"content_type":  contentType,
	})

	doc := &model.Document{
		Title:       title,
		StoragePath: storagePath,
		Size:        int64(len(blob)),
		Status:      model.StatusUploaded,
		Meta:        datatypes.JSON(metaJSON),
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// List 最近的文档，created_at 倒序，最多 50 条
func (s *DocumentService) List() ([]model.Document, error) {
	return s.docs.List(50)
}

// RebuildLocal 本进程跑完整条流水线
// uploaded → extracting → chunking → persisting → indexed，任何一步失败落 error
func (s *DocumentService) RebuildLocal(ctx context.Context, id uint) (pages int, chunkCount int, err error) {
	doc, err := s.lookup(id)
	if err != nil {
		return 0, 0, err
	}

	// 同一文档的并发 rebuild 会互相破坏 chunk 替换，这里用单文档锁串行化
	ok, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, ErrRebuildInProgress
	}
	defer s.locker.Release(ctx, id)

	if err := s.docs.Transition(id, model.StatusExtracting, ""); err != nil {
		return 0, 0, err
	}

	// 1. 取回 blob
	blob, err := s.store.Download(ctx, doc.StoragePath)
	if err != nil {
		return 0, 0, s.fail(id, err)
	}

	// 2. 抽取文本 (坏文件必须报错，不允许悄悄生成空文档)
	res, err := s.extract.Extract(blob)
	if err != nil {
		return 0, 0, s.fail(id, err)
	}

	if err := s.docs.Transition(id, model.StatusChunking, ""); err != nil {
		return 0, 0, err
	}

	// 3. 切片
	parts := s.chunker.Chunk(res.Text)

	if err := s.docs.Transition(id, model.StatusPersisting, ""); err != nil {
		return 0, 0, err
	}

	// 4. 替换 chunk + 回填状态/页数，整体一个事务
	rows := make([]model.Chunk, len(parts))
	for i, content := range parts {
		rows[i] = model.Chunk{DocumentID: id, ChunkIndex: i, Content: content}
	}
	if err := s.docs.ReplaceChunksAndFinalize(id, rows, res.Pages, model.StatusIndexed); err != nil {
		return 0, 0, s.fail(id, err)
	}

	return res.Pages, len(parts), nil
}

// RebuildProxy 转发给外部 Indexer，上游的成功/失败语义由上游负责
func (s *DocumentService) RebuildProxy(ctx context.Context, id uint) (*indexer.ProcessResult, error) {
	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	return s.idx.Process(ctx, id)
}

// Chunks chunk 分页
func (s *DocumentService) Chunks(id uint, limit, offset int) ([]model.Chunk, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.chunks.ListByDocument(id, limit, offset)
}

// Preview 前 n 个 chunk 拼成纯文本
func (s *DocumentService) Preview(id uint, n int) (string, error) {
	if n <= 0 {
		n = 10
	}
	chunks, err := s.chunks.FirstN(id, n)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n---\n\n"), nil
}

// lookup 查文档并校验 storage_path
func (s *DocumentService) lookup(id uint) (*model.Document, error) {
	doc, err := s.docs.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.StoragePath == "" {
		return nil, ErrNoStoragePath
	}
	return doc, nil
}

// fail 把文档落到 error 状态，原始错误原样返回给调用方
func (s *DocumentService) fail(id uint, cause error) error {
	if terr := s.docs.Transition(id, model.StatusError, cause.Error()); terr != nil {
		return fmt.Errorf("%v (additionally failed to record error status: %v)", cause, terr)
	}
	return cause
}
