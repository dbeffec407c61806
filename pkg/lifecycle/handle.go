package lifecycle

import (
	"context"
	"time"
)

// Handle 是分发给单个后台任务的生命周期控制器。
// 它由 Manager 创建，封装了该任务的注销逻辑。
type Handle struct {
	ctx context.Context
	// Cancel 单独取消本任务并立即向Manager注销其名字，不影响其他任务。
	// 坐席登出时对其会话tick调用它，随后同名任务可以马上重新注册。
	Cancel func()
	// Close 通知Manager其所属的任务已经退出。
	// 应该在任务的Goroutine返回前通过 defer 调用。
	Close func()
}

// Ctx 返回句柄内部的context，用于传递给需要感知取消的下游调用。
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 返回一个channel，当管理器广播停机信号时该channel会关闭。
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err 在Done()的channel关闭后，返回上下文被取消的原因。
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 暂停指定的时长；如果句柄在休眠期间被取消，则提前返回错误。
// 所有后台循环都应该用它代替裸的time.Sleep。
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)

	select {
	case <-h.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return h.Err()
	case <-timer.C:
		return nil
	}
}

// RunPeriodic 以固定间隔反复执行fn，直到句柄被取消。
// 这是系统里所有“可取消的重复任务”的统一入口：会话tick和快照归档器都跑在它上面。
// fn返回的错误只会交给onError处理，不会中断循环——下一轮执行会自然地覆盖掉上一轮的失败。
func (h *Handle) RunPeriodic(interval time.Duration, fn func(now time.Time) error, onError func(error)) {
	defer h.Close()

	for {
		if err := h.Sleep(interval); err != nil {
			return
		}
		if err := fn(time.Now()); err != nil && onError != nil {
			onError(err)
		}
	}
}
