package printfill

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// exemptTags 文本永不被转换的元素种类：
// 代码、预格式化、脚本/样式、已有表单控件、内嵌矢量图形
var exemptTags = map[string]bool{
	"code":     true,
	"pre":      true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"textarea": true,
	"input":    true,
	"select":   true,
	"option":   true,
	"button":   true,
	"svg":      true,
}

// Option 转换器配置选项函数
type Option func(*transformerOptions)

// transformerOptions 转换器内部选项
type transformerOptions struct {
	minFieldWidth int
	fieldLabel    string
	extraExempt   map[string]bool
	revertDelay   time.Duration
	logger        *zap.Logger
}

// WithMinFieldWidth 设置输入框的最小字符宽度
func WithMinFieldWidth(w int) Option {
	return func(o *transformerOptions) {
		if w >= 1 {
			o.minFieldWidth = w
		}
	}
}

// WithFieldLabel 设置辅助技术使用的描述标签
func WithFieldLabel(label string) Option {
	return func(o *transformerOptions) {
		if label != "" {
			o.fieldLabel = label
		}
	}
}

// WithExtraExemptTags 在固定豁免集之外追加不转换的元素
func WithExtraExemptTags(tags ...string) Option {
	return func(o *transformerOptions) {
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				o.extraExempt[tag] = true
			}
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) Option {
	return func(o *transformerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Transformer 占位符转换器
// 扫描文档文本中的空白占位符，就地替换为可填写的输入框，
// 打印结束后按标记容器上保存的原文逐字还原
type Transformer struct {
	opts transformerOptions
}

// New 创建占位符转换器
func New(opts ...Option) *Transformer {
	options := transformerOptions{
		minFieldWidth: DefaultMinFieldWidth,
		fieldLabel:    DefaultFieldLabel,
		extraExempt:   make(map[string]bool),
		revertDelay:   DefaultRevertDelay,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Transformer{opts: options}
}

// isExempt 判断元素是否属于豁免种类
func (t *Transformer) isExempt(tag string) bool {
	return exemptTags[tag] || t.opts.extraExempt[tag]
}

// hasExemptAncestor 检查文本节点的祖先链上是否存在豁免元素
// 遍历阶段已经整体跳过豁免子树，这里是 Replace-In-Node 入口的防御性复查
func (t *Transformer) hasExemptAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && t.isExempt(p.Data) {
			return true
		}
	}
	return false
}

// Scan 扫描 root 之下所有文本节点并替换其中的占位符
// 副作用：文档树被就地修改，无返回值
// 遍历或替换期间的任何异常都被捕获、记录为警告并吞掉，
// 部分转换的文档是可接受的降级结果
func (t *Transformer) Scan(root *html.Node) {
	defer func() {
		if r := recover(); r != nil {
			t.opts.logger.Warn("占位符扫描中断，文档保持部分转换状态", zap.Any("panic", r))
		}
	}()

	if root == nil {
		return
	}

	// 先快照再修改：遍历阶段只收集候选节点，避免边遍历边改树
	candidates := t.collectCandidates(root)
	for _, n := range candidates {
		t.replaceInNode(n)
	}
}

// ScanDocument 扫描整个文档的 body（打印前的主触发路径）
func (t *Transformer) ScanDocument(doc *goquery.Document) {
	if doc == nil {
		return
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return
	}
	t.Scan(body.Nodes[0])
}

// PrepareForPrint 打印前触发：确保样式已注入，然后扫描整个 body
func (t *Transformer) PrepareForPrint(doc *goquery.Document) {
	EnsurePrintStyle(doc)
	t.ScanDocument(doc)
}

// collectCandidates 深度优先收集待替换的文本节点
// 豁免元素的子树整体剪枝；无占位符的文本用廉价预检先行过滤
func (t *Transformer) collectCandidates(root *html.Node) []*html.Node {
	var candidates []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}

		switch n.Type {
		case html.ElementNode:
			if t.isExempt(n.Data) {
				return
			}
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" && HasBlank(n.Data) {
				candidates = append(candidates, n)
			}
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return candidates
}

// replaceInNode 把单个文本节点中的所有占位符替换为输入框
// 替换序列：前导文本 → 冒号与捕获空白（保留为纯文本）→ 输入框 → … → 末尾文本
// 整个序列包入标记容器，原始全文逐字保存在容器属性上
// 返回是否发生了替换
func (t *Transformer) replaceInNode(n *html.Node) bool {
	if n == nil || n.Type != html.TextNode || n.Parent == nil {
		return false
	}
	if t.hasExemptAncestor(n) {
		return false
	}

	text := n.Data
	matches := FindMatches(text)
	if len(matches) == 0 {
		// 防御性复查：预检通过但此处无匹配时不动原节点
		return false
	}

	marker := newMarkerNode(text)
	last := 0
	for _, m := range matches {
		if m.Start > last {
			marker.AppendChild(newTextNode(text[last:m.Start]))
		}
		// 冒号与空白保留为纯文本，被消费的只有下划线串
		marker.AppendChild(newTextNode(":" + m.Whitespace))
		marker.AppendChild(newFieldNode(m, t.opts.minFieldWidth, t.opts.fieldLabel))
		last = m.End
	}
	if last < len(text) {
		marker.AppendChild(newTextNode(text[last:]))
	}

	parent := n.Parent
	parent.InsertBefore(marker, n)
	parent.RemoveChild(n)

	t.opts.logger.Debug("文本节点已替换",
		zap.Int("matches", len(matches)),
		zap.Int("length", len(text)))

	return true
}

// Revert 还原文档中所有标记容器
// 读取容器上保存的原文，用同内容的文本节点替换整个容器，
// 输入框随容器一并移除；不存在标记容器时为空操作，可重复调用
func (t *Transformer) Revert(doc *goquery.Document) {
	if doc == nil {
		return
	}

	markers := doc.Find("span." + MarkerClass)
	count := 0
	markers.Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		if node.Parent == nil {
			return
		}
		original, ok := s.Attr(DataOriginalAttr)
		if !ok {
			// 没有原文可还原的容器保持原样，不做猜测
			t.opts.logger.Warn("标记容器缺少原文属性，跳过还原")
			return
		}
		parent := node.Parent
		parent.InsertBefore(newTextNode(original), node)
		parent.RemoveChild(node)
		count++
	})

	if count > 0 {
		t.opts.logger.Debug("文档已还原", zap.Int("markers", count))
	}
}
