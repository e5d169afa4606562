package repository

import (
	"TutorCerdas/internal/model"

	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(doc *model.Document) error
	GetByID(id uint) (*model.Document, error)
	List(limit int) ([]model.Document, error)

	// Transition 校验并落库一次状态迁移
	Transition(id uint, to model.DocumentStatus, errMsg string) error

	// ReplaceChunksAndFinalize 把「删旧 chunk → 插新 chunk → 更新状态/页数」
	// 作为一个事务提交，任何一步失败整体回滚
	ReplaceChunksAndFinalize(id uint, chunks []model.Chunk, pages int, to model.DocumentStatus) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

func (r *documentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(limit int) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Order("created_at desc").Limit(limit).Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Transition(id uint, to model.DocumentStatus, errMsg string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var doc model.Document
		if err := tx.First(&doc, id).Error; err != nil {
			return err
		}
		if !doc.Status.CanTransition(to) {
			return &model.ErrIllegalTransition{From: doc.Status, To: to}
		}
		return tx.Model(&doc).Updates(map[string]interface{}{
			"status":    to,
			"error_msg": errMsg,
		}).Error
	})
}

func (r *documentRepository) ReplaceChunksAndFinalize(id uint, chunks []model.Chunk, pages int, to model.DocumentStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var doc model.Document
		if err := tx.First(&doc, id).Error; err != nil {
			return err
		}
		if !doc.Status.CanTransition(to) {
			return &model.ErrIllegalTransition{From: doc.Status, To: to}
		}

		// 1. 清掉上一轮的全部 chunk (替换语义，不允许两轮混杂)
		if err := tx.Where("document_id = ?", id).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}

		// 2. 批量插入新 chunk (零个则跳过)
		if len(chunks) > 0 {
			if err := tx.CreateInBatches(chunks, 200).Error; err != nil {
				return err
			}
		}

		// 3. 回填状态和页数
		return tx.Model(&doc).Updates(map[string]interface{}{
			"status":    to,
			"pages":     pages,
			"error_msg": "",
		}).Error
	})
}
