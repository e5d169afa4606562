package dto

// AskReq 提问请求
type AskReq struct {
	Question string `json:"question"` // 用户的问题
	Role     string `json:"role"`     // 前端角色标识 (可选，仅透传)
	TopK     int    `json:"top_k"`    // 检索条数 (可选，3~10，默认 6)
}

// Source 一条引用来源，citation index 从 1 开始且稳定
type Source struct {
	ID         string  `json:"id"` // "{document_id}:{chunk_index}"
	Index      int     `json:"index"`
	DocumentID uint    `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
}

// AskResp 答案 + 来源列表
type AskResp struct {
	Answer  string      `json:"answer"`
	Sources interface{} `json:"sources"`
}
