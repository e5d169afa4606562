package dto

import "TutorCerdas/internal/model"

// UploadResp 上传成功返回刚落库的文档
type UploadResp struct {
	OK       bool            `json:"ok"`
	Document *model.Document `json:"document"`
}

// ListResp 文档列表，按 created_at 倒序
type ListResp struct {
	Items []model.Document `json:"items"`
}

// RebuildResp local 模式下的重建结果
type RebuildResp struct {
	OK     bool `json:"ok"`
	Pages  int  `json:"pages"`
	Chunks int  `json:"chunks"`
}

// ChunksResp chunk 分页
type ChunksResp struct {
	Items  []model.Chunk `json:"items"`
	Count  int64         `json:"count"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
