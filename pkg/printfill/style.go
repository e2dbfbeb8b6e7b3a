package printfill

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleElementID 注入的打印样式块的固定 id，重复注入以它判重
const StyleElementID = "printfill-print-style"

// printStyleCSS 打印介质下输入框呈现下划线边框、无背景；
// 屏幕上保持低调，不干扰正常阅读
const printStyleCSS = `
.` + FieldClass + ` {
  font: inherit;
  border: none;
  border-bottom: 1px dotted #999;
  background: transparent;
  padding: 0 2px;
}
@media print {
  .` + FieldClass + ` {
    border: none;
    border-bottom: 1px solid #000;
    background: none;
    -webkit-appearance: none;
    appearance: none;
  }
}
`

// EnsurePrintStyle 幂等地注入打印样式块
// 文档中始终最多存在一个 id 为 StyleElementID 的样式元素
func EnsurePrintStyle(doc *goquery.Document) {
	if doc == nil {
		return
	}
	if doc.Find("#" + StyleElementID).Length() > 0 {
		return
	}

	head := doc.Find("head")
	if head.Length() == 0 {
		// html.Parse 正常情况下总会补全 head，这里只是防御
		return
	}

	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr: []html.Attribute{
			{Key: "id", Val: StyleElementID},
			{Key: "media", Val: "all"},
		},
	}
	style.AppendChild(newTextNode(printStyleCSS))
	head.AppendNodes(style)
}
