package printfill

import (
	"regexp"
)

// blankPattern 匹配空白占位符：冒号 + 可选空白 + 至少 5 个下划线
// 包级只读，编译一次；匹配本身无共享可变状态
var blankPattern = regexp.MustCompile(`:(\s*)(_{5,})`)

// Match 表示文本中一个已定位的占位符
type Match struct {
	Start      int    // 匹配区域起始偏移（冒号位置）
	End        int    // 匹配区域结束偏移（下划线串之后）
	Whitespace string // 冒号与下划线之间捕获的空白
	RunLen     int    // 下划线串长度
}

// FindMatches 返回文本中所有不重叠的占位符，按从左到右顺序
// 全局匹配语义：一次匹配结束后从下划线串之后继续扫描，
// 同一文本中相邻的占位符各自独立成一个 Match
func FindMatches(text string) []Match {
	if text == "" {
		return nil
	}

	indices := blankPattern.FindAllStringSubmatchIndex(text, -1)
	if len(indices) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(indices))
	for _, idx := range indices {
		// idx: [全匹配起, 全匹配止, 空白起, 空白止, 下划线起, 下划线止]
		matches = append(matches, Match{
			Start:      idx[0],
			End:        idx[1],
			Whitespace: text[idx[2]:idx[3]],
			RunLen:     idx[5] - idx[4],
		})
	}

	return matches
}

// HasBlank 廉价预检：文本中是否存在至少一个占位符
// Scan 在进入完整替换逻辑之前用它过滤无关节点
func HasBlank(text string) bool {
	if text == "" {
		return false
	}
	return blankPattern.MatchString(text)
}
