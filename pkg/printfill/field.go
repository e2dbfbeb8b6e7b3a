package printfill

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MarkerClass 标记容器的固定 class
	MarkerClass = "printfill-blank"
	// FieldClass 填空输入框的固定 class
	FieldClass = "printfill-field"
	// DataOriginalAttr 标记容器上保存原始文本的属性
	DataOriginalAttr = "data-printfill-original"
	// DataIDAttr 标记容器上的唯一标识属性
	DataIDAttr = "data-printfill-id"

	// DefaultMinFieldWidth 输入框的最小字符宽度
	// 即使是 5 个下划线的短串也保证可用宽度
	DefaultMinFieldWidth = 2

	// DefaultFieldLabel 辅助技术使用的默认描述标签
	DefaultFieldLabel = "fill-in blank"
)

// fieldWidth 计算输入框的字符宽度单位：max(最小宽度, 下划线串显示宽度)
func fieldWidth(run string, minWidth int) int {
	if minWidth < 1 {
		minWidth = DefaultMinFieldWidth
	}
	w := runewidth.StringWidth(run)
	if w < minWidth {
		return minWidth
	}
	return w
}

// newFieldNode 为一个 Match 构建填空输入框节点
// 宽度与下划线串成正比，禁用自动补全与拼写检查
func newFieldNode(m Match, minWidth int, label string) *html.Node {
	width := fieldWidth(strings.Repeat("_", m.RunLen), minWidth)
	if label == "" {
		label = DefaultFieldLabel
	}

	return &html.Node{
		Type:     html.ElementNode,
		Data:     "input",
		DataAtom: atom.Input,
		Attr: []html.Attribute{
			{Key: "type", Val: "text"},
			{Key: "class", Val: FieldClass},
			{Key: "size", Val: fmt.Sprintf("%d", width)},
			{Key: "style", Val: fmt.Sprintf("width:%dch", width)},
			{Key: "aria-label", Val: fmt.Sprintf("%s (%d)", label, width)},
			{Key: "autocomplete", Val: "off"},
			{Key: "spellcheck", Val: "false"},
		},
	}
}

// newMarkerNode 构建空的标记容器，原始文本原样保存在属性上
// 跨进程还原依赖该属性，而不是内存中的映射
func newMarkerNode(original string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: MarkerClass},
			{Key: DataOriginalAttr, Val: original},
			{Key: DataIDAttr, Val: uuid.New().String()},
		},
	}
}

// newTextNode 构建纯文本节点
func newTextNode(text string) *html.Node {
	return &html.Node{
		Type: html.TextNode,
		Data: text,
	}
}
