package printfill

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := LoadHTMLString("<html><head><title>t</title></head><body>" + body + "</body></html>")
	require.NoError(t, err)
	return doc
}

func TestScanAndRevert(t *testing.T) {
	t.Run("End To End", func(t *testing.T) {
		doc := mustLoad(t, "<p>Name: _____ Date: ______</p>")
		before, err := RenderHTML(doc)
		require.NoError(t, err)

		tr := New()
		tr.PrepareForPrint(doc)

		// 一个标记容器，内含两个独立的输入框
		markers := doc.Find("span." + MarkerClass)
		require.Equal(t, 1, markers.Length())

		fields := markers.Find("input." + FieldClass)
		require.Equal(t, 2, fields.Length())

		// 宽度与下划线串长度一致：5 和 6
		first := fields.Eq(0)
		second := fields.Eq(1)
		assert.Equal(t, "5", first.AttrOr("size", ""))
		assert.Equal(t, "width:5ch", first.AttrOr("style", ""))
		assert.Equal(t, "6", second.AttrOr("size", ""))
		assert.Equal(t, "width:6ch", second.AttrOr("style", ""))

		// 容器上保存的原文与初始字符串相同
		original, ok := markers.Attr(DataOriginalAttr)
		require.True(t, ok)
		assert.Equal(t, "Name: _____ Date: ______", original)

		// 未匹配的文本原样保留，冒号与空白未被消费
		assert.Equal(t, "Name:  Date: ", markers.Text())

		// 还原后逐字节恢复
		tr.Revert(doc)
		after, err := RenderHTML(doc)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, "Name: _____ Date: ______", doc.Find("p").Text())
	})

	t.Run("Field Attributes", func(t *testing.T) {
		doc := mustLoad(t, "<p>Sign: _____</p>")
		New().ScanDocument(doc)

		field := doc.Find("input." + FieldClass)
		require.Equal(t, 1, field.Length())
		assert.Equal(t, "text", field.AttrOr("type", ""))
		assert.Equal(t, "off", field.AttrOr("autocomplete", ""))
		assert.Equal(t, "false", field.AttrOr("spellcheck", ""))
		assert.NotEmpty(t, field.AttrOr("aria-label", ""))

		marker := doc.Find("span." + MarkerClass)
		assert.NotEmpty(t, marker.AttrOr(DataIDAttr, ""))
	})

	t.Run("Minimum Width Floor", func(t *testing.T) {
		// 5 个下划线本身已超过默认下限 2，宽度应为 5 而不是 2
		doc := mustLoad(t, "<p>a: _____</p>")
		New().ScanDocument(doc)
		assert.Equal(t, "5", doc.Find("input."+FieldClass).AttrOr("size", ""))

		// 自定义下限高于串长时取下限
		doc = mustLoad(t, "<p>a: _____</p>")
		New(WithMinFieldWidth(8)).ScanDocument(doc)
		assert.Equal(t, "8", doc.Find("input."+FieldClass).AttrOr("size", ""))
	})

	t.Run("Exempt Elements Untouched", func(t *testing.T) {
		body := `<pre>k: ______</pre>` +
			`<code>v: ______</code>` +
			`<textarea>t: ______</textarea>` +
			`<svg><text>s: ______</text></svg>` +
			`<p>ok: ______</p>`
		doc := mustLoad(t, body)
		New().ScanDocument(doc)

		// 只有 p 里的文本被转换
		assert.Equal(t, 1, doc.Find("span."+MarkerClass).Length())
		assert.Equal(t, "k: ______", doc.Find("pre").Text())
		assert.Equal(t, "v: ______", doc.Find("code").Text())
		assert.Equal(t, 0, doc.Find("svg span."+MarkerClass).Length())
	})

	t.Run("Extra Exempt Tags", func(t *testing.T) {
		doc := mustLoad(t, "<blockquote>q: ______</blockquote><p>p: ______</p>")
		New(WithExtraExemptTags("blockquote")).ScanDocument(doc)

		assert.Equal(t, 1, doc.Find("span."+MarkerClass).Length())
		assert.Equal(t, "q: ______", doc.Find("blockquote").Text())
	})

	t.Run("Revert Without Scan Is Noop", func(t *testing.T) {
		doc := mustLoad(t, "<p>Name: _____</p>")
		before, err := RenderHTML(doc)
		require.NoError(t, err)

		New().Revert(doc)

		after, err := RenderHTML(doc)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Revert Is Idempotent", func(t *testing.T) {
		doc := mustLoad(t, "<p>Name: _____</p>")
		tr := New()
		tr.PrepareForPrint(doc)
		tr.Revert(doc)
		first, err := RenderHTML(doc)
		require.NoError(t, err)

		tr.Revert(doc)
		second, err := RenderHTML(doc)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Double Scan Does Not Corrupt", func(t *testing.T) {
		doc := mustLoad(t, "<p>Name: _____</p>")
		tr := New()
		tr.PrepareForPrint(doc)
		tr.PrepareForPrint(doc)

		// 已替换的内容不再含原始匹配文本，第二次扫描不产生新标记
		assert.Equal(t, 1, doc.Find("span."+MarkerClass).Length())
		assert.Equal(t, 1, doc.Find("input."+FieldClass).Length())
		// 样式块也不重复
		assert.Equal(t, 1, doc.Find("#"+StyleElementID).Length())

		tr.Revert(doc)
		assert.Equal(t, "Name: _____", doc.Find("p").Text())
	})

	t.Run("Multiple Nodes Independently", func(t *testing.T) {
		doc := mustLoad(t, "<p>a: ______</p><div>b: _______</div><p>no blanks here</p>")
		New().ScanDocument(doc)

		assert.Equal(t, 2, doc.Find("span."+MarkerClass).Length())
		assert.Equal(t, 2, doc.Find("input."+FieldClass).Length())
	})

	t.Run("Surrounding Text Preserved", func(t *testing.T) {
		doc := mustLoad(t, "<p>before Name: _____ after</p>")
		tr := New()
		tr.ScanDocument(doc)

		marker := doc.Find("span." + MarkerClass)
		require.Equal(t, 1, marker.Length())
		assert.True(t, strings.HasPrefix(marker.Text(), "before Name: "))
		assert.True(t, strings.HasSuffix(marker.Text(), " after"))

		tr.Revert(doc)
		assert.Equal(t, "before Name: _____ after", doc.Find("p").Text())
	})

	t.Run("Nil Safety", func(t *testing.T) {
		tr := New()
		assert.NotPanics(t, func() {
			tr.Scan(nil)
			tr.ScanDocument(nil)
			tr.Revert(nil)
			tr.PrepareForPrint(nil)
			EnsurePrintStyle(nil)
		})
	})
}

func TestEnsurePrintStyle(t *testing.T) {
	t.Run("Injects Once", func(t *testing.T) {
		doc := mustLoad(t, "<p>x</p>")

		EnsurePrintStyle(doc)
		EnsurePrintStyle(doc)
		EnsurePrintStyle(doc)

		style := doc.Find("head #" + StyleElementID)
		require.Equal(t, 1, style.Length())
		assert.Contains(t, style.Text(), "@media print")
		assert.Contains(t, style.Text(), FieldClass)
	})
}

func TestRoundTripProperty(t *testing.T) {
	// 含占位符的任意文本：扫描后立即还原必须逐字节恢复
	cases := []string{
		"Name: _____",
		"Name:_____",
		"Name:   __________",
		"a: _____ b: _____ c: _____",
		": _____: _____",
		"Data &amp; more: ______",
		"前置文本 姓名: ______ 后置文本",
	}

	for i, body := range cases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			doc := mustLoad(t, "<p>"+body+"</p>")
			before, err := RenderHTML(doc)
			require.NoError(t, err)

			tr := New()
			tr.ScanDocument(doc)
			require.GreaterOrEqual(t, doc.Find("span."+MarkerClass).Length(), 1)
			tr.Revert(doc)

			after, err := RenderHTML(doc)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}
