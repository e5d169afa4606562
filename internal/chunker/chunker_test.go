package chunker

import (
	"strings"
	"testing"
)

func TestChunkSizesExample(t *testing.T) {
	// 800 字符窗口，2000 字符文本 → [800, 800, 400]
	c := NewFixedChunker(800)
	chunks := c.Chunk(strings.Repeat("a", 2000))

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	want := []int{800, 800, 400}
	for i, w := range want {
		if len(chunks[i]) != w {
			t.Errorf("chunk %d: expected len %d, got %d", i, w, len(chunks[i]))
		}
	}
}

func TestChunkConcatReproducesInput(t *testing.T) {
	texts := []string{
		"hello world",
		strings.Repeat("x", 799),
		strings.Repeat("x", 800),
		strings.Repeat("x", 801),
		"materi kuliah: jaringan komputer dan sistem terdistribusi. " + strings.Repeat("isi ", 500),
	}
	c := NewFixedChunker(800)
	for _, text := range texts {
		chunks := c.Chunk(text)
		if strings.Join(chunks, "") != text {
			t.Errorf("concatenated chunks must reproduce input (len %d)", len(text))
		}
	}
}

func TestChunkCount(t *testing.T) {
	c := NewFixedChunker(100)
	cases := []struct {
		length int
		want   int
	}{
		{0, 0}, {1, 1}, {99, 1}, {100, 1}, {101, 2}, {250, 3}, {1000, 10},
	}
	for _, tc := range cases {
		got := len(c.Chunk(strings.Repeat("a", tc.length)))
		if got != tc.want {
			t.Errorf("length %d: expected %d chunks, got %d", tc.length, tc.want, got)
		}
	}
}

func TestChunkEmptyText(t *testing.T) {
	c := NewFixedChunker(800)
	if got := c.Chunk(""); len(got) != 0 {
		t.Errorf("empty text must produce zero chunks, got %d", len(got))
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := NewFixedChunker(7)
	text := "deterministik: teks yang sama harus menghasilkan potongan yang sama"
	a := c.Chunk(text)
	b := c.Chunk(text)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunkMultiByteBoundary(t *testing.T) {
	// 窗口按 rune 计数，多字节字符不能被切成两半
	c := NewFixedChunker(2)
	chunks := c.Chunk("日本語テキスト")
	for i, ch := range chunks {
		if !strings.Contains("日本語テキスト", ch) {
			t.Errorf("chunk %d is not a valid substring: %q", i, ch)
		}
	}
	if strings.Join(chunks, "") != "日本語テキスト" {
		t.Error("concatenation must reproduce the original text")
	}
}

func TestChunkNoNormalization(t *testing.T) {
	c := NewFixedChunker(4)
	chunks := c.Chunk("  ab  cd  ")
	if strings.Join(chunks, "") != "  ab  cd  " {
		t.Error("chunker must not trim or normalize whitespace")
	}
}
