package extractor

import (
	"errors"
	"testing"
)

func TestExtractRejectsEmptyInput(t *testing.T) {
	e := NewPDFExtractor()
	_, err := e.Extract(nil)
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	e := NewPDFExtractor()
	_, err := e.Extract([]byte("this is definitely not a pdf"))
	if err == nil {
		t.Fatal("expected error for non-PDF bytes")
	}
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractRejectsTruncatedHeader(t *testing.T) {
	// 只有魔数没有 xref 的残缺文件
	e := NewPDFExtractor()
	_, err := e.Extract([]byte("%PDF-1.7\n"))
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction for truncated pdf, got %v", err)
	}
}
