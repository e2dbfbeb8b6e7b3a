package markdown

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Converter 把 Markdown 源转换为独立的 HTML 页面，供占位符转换器处理
// 前置元数据（front matter）被解析出来，不会进入正文参与扫描；
// 围栏代码与行内代码转换为 pre/code，后续扫描因此天然豁免
type Converter struct {
	md       goldmark.Markdown
	sanitize bool
	policy   *bluemonday.Policy
}

// NewConverter 创建 Markdown 转换器
// sanitize 为真时对转换结果做一次 UGC 清洗
func NewConverter(sanitize bool) *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				meta.Meta,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		sanitize: sanitize,
		policy:   bluemonday.UGCPolicy(),
	}
}

// ToHTML 转换 Markdown 为完整 HTML 页面，并返回解析出的前置元数据
// 元数据中的 title 作为页面标题
func (c *Converter) ToHTML(source []byte) ([]byte, map[string]interface{}, error) {
	var body bytes.Buffer
	ctx := parser.NewContext()

	if err := c.md.Convert(source, &body, parser.WithContext(ctx)); err != nil {
		return nil, nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	metadata := meta.Get(ctx)

	content := body.Bytes()
	if c.sanitize {
		content = c.policy.SanitizeBytes(content)
	}

	title := "Document"
	if v, ok := metadata["title"].(string); ok && v != "" {
		title = v
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n<title>")
	page.WriteString(html.EscapeString(title))
	page.WriteString("</title>\n</head>\n<body>\n")
	page.Write(content)
	page.WriteString("</body>\n</html>\n")

	return page.Bytes(), metadata, nil
}
