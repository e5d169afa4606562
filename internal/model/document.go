package model

import (
	"fmt"

	"gorm.io/datatypes"
)

// DocumentStatus 文档状态机
// uploaded → extracting → chunking → persisting → indexed/embedded
// error 可以从任意状态进入，且不会自愈
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusExtracting DocumentStatus = "extracting"
	StatusChunking   DocumentStatus = "chunking"
	StatusPersisting DocumentStatus = "persisting"
	StatusIndexed    DocumentStatus = "indexed"
	// StatusEmbedded 是 proxy 模式下 Indexer 回写的终态，与 indexed 等价
	StatusEmbedded DocumentStatus = "embedded"
	StatusError    DocumentStatus = "error"
)

// legalTransitions 每个状态允许流向的下一批状态
var legalTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploaded:   {StatusExtracting, StatusError},
	StatusExtracting: {StatusChunking, StatusError},
	StatusChunking:   {StatusPersisting, StatusError},
	StatusPersisting: {StatusIndexed, StatusEmbedded, StatusError},
	// 终态允许重新触发 rebuild
	StatusIndexed:  {StatusExtracting, StatusError},
	StatusEmbedded: {StatusExtracting, StatusError},
	StatusError:    {StatusExtracting},
}

// Valid 是否为已知状态
func (s DocumentStatus) Valid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransition 校验状态迁移是否合法，每次落库前都要调用
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	for _, t := range legalTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal 是否为成功终态
func (s DocumentStatus) Terminal() bool {
	return s == StatusIndexed || s == StatusEmbedded
}

// ErrIllegalTransition 非法状态迁移
type ErrIllegalTransition struct {
	From, To DocumentStatus
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal status transition: %s -> %s", e.From, e.To)
}

// Document 一个用户上传的文件及其解析/索引元数据
type Document struct {
	BaseModel
	Title string `gorm:"index" json:"title"`

	// 存储路径：{year}/{month}/{token}.{ext}，每个文档唯一
	StoragePath string `gorm:"uniqueIndex;not null" json:"storage_path"`
	Size        int64  `json:"size"`

	// 状态机字段，见 DocumentStatus
	Status   DocumentStatus `gorm:"type:varchar(20);default:'uploaded';index" json:"status"`
	ErrorMsg string         `json:"error_msg,omitempty"`

	// 页数 (解析成功后回填，未解析时为 null)
	Pages *int `json:"pages"`

	// 上传时的附加信息 (原始文件名/扩展名/Content-Type)
	Meta datatypes.JSON `json:"meta,omitempty"`
}

// Chunk 文档抽取文本的一个有序切片，检索的最小单元
type Chunk struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	DocumentID uint   `gorm:"index:idx_doc_chunk,unique;not null" json:"document_id"`
	ChunkIndex int    `gorm:"index:idx_doc_chunk,unique" json:"chunk_index"`
	Content    string `gorm:"type:text" json:"content"`
}
