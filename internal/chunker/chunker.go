package chunker

// FixedChunker 按固定字符数切片
// 不做任何清洗/去重，边界可能切断单词，这是刻意保留的简单策略
type FixedChunker struct {
	size int
}

const DefaultChunkSize = 800

func NewFixedChunker(size int) *FixedChunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &FixedChunker{size: size}
}

func (c *FixedChunker) Size() int {
	return c.size
}

// Chunk 把文本切成不重叠的窗口，最后一片可以不足 size
// 空文本产生零个切片；同样的输入永远得到同样的输出
func (c *FixedChunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	// 按 rune 走，避免把多字节字符切成半个
	runes := []rune(text)

	chunks := make([]string, 0, (len(runes)+c.size-1)/c.size)
	for i := 0; i < len(runes); i += c.size {
		end := i + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
