package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client 外部 Indexer (语义检索 + 向量化) 的 HTTP 客户端
// rebuild 的转发走「带顺序的候选端点」：先打新路由，上游 404 再退回旧路由，
// 而不是在调用点做散落的状态码判断
type Client struct {
	baseURL string
	http    *http.Client

	// rebuild 转发的候选端点，按优先级排列
	processPaths []string
}

// ErrNotConfigured INDEXER_URL 未配置
var ErrNotConfigured = errors.New("INDEXER_URL not set")

// ErrRetrieval 检索调用失败 (网络错误或上游返回非成功)
var ErrRetrieval = errors.New("retrieval_failed")

// ContextItem 一条检索结果
type ContextItem struct {
	DocumentID uint    `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// searchResp 上游 /search 的响应体
type searchResp struct {
	OK    bool          `json:"ok"`
	Items []ContextItem `json:"items"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			// 上游延迟不可控，必须有显式超时
			Timeout: 60 * time.Second,
		},
		processPaths: []string{"/process/document", "/embed/document"},
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Search 语义检索：{question, top_k} → 排好序的上下文片段
// 上游失败时返回 ErrRetrieval，调用方不得继续走生成环节
func (c *Client) Search(ctx context.Context, question string, topK int) ([]ContextItem, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"question": question,
		"top_k":    topK,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var sr searchResp
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: bad upstream body: %s", ErrRetrieval, truncate(body, 200))
	}
	if resp.StatusCode != http.StatusOK || !sr.OK {
		return nil, fmt.Errorf("%w: upstream status %d: %s", ErrRetrieval, resp.StatusCode, truncate(body, 200))
	}

	return sr.Items, nil
}

// ProcessResult rebuild 转发的上游原样结果
type ProcessResult struct {
	Status int
	Body   map[string]interface{}
}

// Process 把整条 extract→chunk→embed 流水线委托给 Indexer
// 按候选端点顺序尝试，只有「端点不存在 (404)」才换下一个；
// 其余状态码一律认为上游已受理/已拒绝，原样中继
func (c *Client) Process(ctx context.Context, documentID uint) (*ProcessResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, _ := json.Marshal(map[string]interface{}{"document_id": documentID})

	var last *ProcessResult
	for _, path := range c.processPaths {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		parsed := map[string]interface{}{}
		if err := json.Unmarshal(body, &parsed); err != nil {
			parsed = map[string]interface{}{"raw": string(body)}
		}
		last = &ProcessResult{Status: resp.StatusCode, Body: parsed}

		if resp.StatusCode != http.StatusNotFound {
			return last, nil
		}
	}

	// 所有候选端点都 404，把最后一个结果中继回去
	return last, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
