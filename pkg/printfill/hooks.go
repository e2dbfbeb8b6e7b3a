package printfill

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultRevertDelay 动作完成后到还原之间的固定延迟
// 这是一个尽力而为的近似值：宿主环境若没有可靠的打印完成信号，
// 超过该延迟仍在打印时输入框可能依然可见，这是已声明的限制而非缺陷
const DefaultRevertDelay = time.Second

// Action 可被包装的宿主动作（典型的是"立即打印"）
type Action func(ctx context.Context) error

// WithRevertDelay 设置打印动作之后到还原之间的延迟
func WithRevertDelay(d time.Duration) Option {
	return func(o *transformerOptions) {
		if d >= 0 {
			o.revertDelay = d
		}
	}
}

// runHook 执行一个钩子并吞掉其中的任何异常
// 钩子失败永远不会阻塞被包装的底层动作
func (t *Transformer) runHook(name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.opts.logger.Warn("钩子执行失败，动作继续",
				zap.String("hook", name),
				zap.Any("panic", r))
		}
	}()
	fn()
}

// WrapAction 把动作包装为 前置钩子 → 动作 → 延迟后置钩子
// 前后钩子的失败都被独立吞掉，底层动作总是照常执行；
// 后置钩子在 postDelay 之后于独立的计时器回调中运行
func (t *Transformer) WrapAction(action Action, pre, post func(), postDelay time.Duration) Action {
	return func(ctx context.Context) error {
		t.runHook("pre", pre)

		err := action(ctx)

		if post != nil {
			time.AfterFunc(postDelay, func() {
				t.runHook("post", post)
			})
		}

		return err
	}
}

// WrapPrintAction 手动打印路径：动作执行前同步完成样式注入与扫描，
// 动作之后按配置的延迟调度还原
func (t *Transformer) WrapPrintAction(doc *goquery.Document, action Action) Action {
	return t.WrapAction(action,
		func() { t.PrepareForPrint(doc) },
		func() { t.Revert(doc) },
		t.opts.revertDelay)
}
