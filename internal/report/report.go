package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/blankform/go-printfill/pkg/printfill"
)

// Entry 扫描报告中的一行：一个已生成的填空输入框
type Entry struct {
	MarkerID string // 所属标记容器的标识（截短）
	Index    int    // 在容器内的序号（从 1 起）
	RunLen   int    // 下划线串长度
	Width    int    // 输入框字符宽度
	Context  string // 原文片段
}

const contextSampleLen = 40

// Collect 从已转换的文档中读回所有填空输入框的信息
// 依据标记容器上保存的原文重新定位匹配，保证报告与实际生成的输入框一致
func Collect(doc *goquery.Document) []Entry {
	if doc == nil {
		return nil
	}

	var entries []Entry
	doc.Find("span." + printfill.MarkerClass).Each(func(_ int, marker *goquery.Selection) {
		id := marker.AttrOr(printfill.DataIDAttr, "")
		if len(id) > 8 {
			id = id[:8]
		}
		original := marker.AttrOr(printfill.DataOriginalAttr, "")
		matches := printfill.FindMatches(original)

		fields := marker.Find("input." + printfill.FieldClass)
		fields.Each(func(i int, field *goquery.Selection) {
			width, _ := strconv.Atoi(field.AttrOr("size", "0"))

			runLen := 0
			if i < len(matches) {
				runLen = matches[i].RunLen
			}

			entries = append(entries, Entry{
				MarkerID: id,
				Index:    i + 1,
				RunLen:   runLen,
				Width:    width,
				Context:  sample(original),
			})
		})
	})

	return entries
}

// sample 截取原文片段用于展示，压缩内部空白
func sample(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > contextSampleLen {
		return string(runes[:contextSampleLen]) + "…"
	}
	return text
}

// Render 把扫描报告渲染为表格加一行彩色摘要
func Render(w io.Writer, entries []Entry) {
	if len(entries) == 0 {
		color.New(color.FgYellow).Fprintln(w, "未发现任何占位符")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"标记", "#", "下划线", "宽度", "原文片段"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.MarkerID, e.Index, e.RunLen, e.Width, e.Context})
	}
	tw.Render()

	markers := make(map[string]bool)
	for _, e := range entries {
		markers[e.MarkerID] = true
	}
	color.New(color.FgGreen).Fprintf(w, "共 %d 个填空输入框，分布在 %d 个标记容器中\n",
		len(entries), len(markers))
}
