package repository

import (
	"TutorCerdas/internal/model"

	"gorm.io/gorm"
)

type ChunkRepository interface {
	// ListByDocument 按 chunk_index 升序分页，count 为该文档的 chunk 总数
	ListByDocument(documentID uint, limit, offset int) ([]model.Chunk, int64, error)

	// FirstN 取前 n 个 chunk，给 preview 用
	FirstN(documentID uint, n int) ([]model.Chunk, error)
}

type chunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) ChunkRepository {
	return &chunkRepository{db: db}
}

func (r *chunkRepository) ListByDocument(documentID uint, limit, offset int) ([]model.Chunk, int64, error) {
	var count int64
	if err := r.db.Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var chunks []model.Chunk
	err := r.db.Where("document_id = ?", documentID).
		Order("chunk_index asc").
		Limit(limit).Offset(offset).
		Find(&chunks).Error
	return chunks, count, err
}

func (r *chunkRepository) FirstN(documentID uint, n int) ([]model.Chunk, error) {
	var chunks []model.Chunk
	err := r.db.Where("document_id = ?", documentID).
		Order("chunk_index asc").
		Limit(n).
		Find(&chunks).Error
	return chunks, err
}
