package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction 字节流不是合法 PDF 时返回
// 流水线必须把它原样暴露给调用方，绝不能悄悄落一个空文档
var ErrExtraction = errors.New("extraction failed")

// Result 抽取结果
type Result struct {
	Text  string
	Pages int
}

// PDFExtractor 把 PDF 二进制转成纯文本 + 页数，纯函数无副作用
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrExtraction)
	}

	// pdf 库内部对坏文件会 panic，这里统一收敛成 ErrExtraction
	res, err := e.extract(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return res, nil
}

func (e *PDFExtractor) extract(data []byte) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, err
	}

	return &Result{
		Text:  buf.String(),
		Pages: reader.NumPage(),
	}, nil
}
