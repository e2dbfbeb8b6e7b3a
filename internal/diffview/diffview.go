package diffview

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// 等值片段两侧保留的上下文长度
const contextRunes = 24

// Render 渲染转换前后的差异
// 插入标记为 [+…+]，删除标记为 [-…-]，过长的相同片段折叠为省略号
func Render(before, after string) string {
	if before == after {
		return "(no changes)"
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for i, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("[+")
			sb.WriteString(d.Text)
			sb.WriteString("+]")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("-]")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(collapse(d.Text, i == 0, i == len(diffs)-1))
		}
	}

	return sb.String()
}

// collapse 折叠过长的相同片段，只保留变更附近的上下文
func collapse(text string, first, last bool) string {
	runes := []rune(text)
	if len(runes) <= 2*contextRunes {
		return text
	}

	head := string(runes[:contextRunes])
	tail := string(runes[len(runes)-contextRunes:])

	switch {
	case first:
		return " … " + tail
	case last:
		return head + " … "
	default:
		return head + " … " + tail
	}
}
