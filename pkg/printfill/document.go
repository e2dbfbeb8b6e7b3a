package printfill

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// LoadHTML 解析 HTML 文档，按内容声明的字符集解码为 UTF-8
func LoadHTML(r io.Reader) (*goquery.Document, error) {
	decoded, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// LoadHTMLString 从字符串解析 HTML 文档
func LoadHTMLString(s string) (*goquery.Document, error) {
	return LoadHTML(strings.NewReader(s))
}

// RenderHTML 把文档序列化为 HTML
// 同一棵未改动的树的两次序列化结果逐字节相同，
// 因此 扫描→还原 前后的序列化可以直接做等值比较
func RenderHTML(doc *goquery.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var sb strings.Builder
	for _, n := range doc.Nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}

	return sb.String(), nil
}
