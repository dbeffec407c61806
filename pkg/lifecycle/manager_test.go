package lifecycle

import (
	"testing"
	"time"
)

func TestDuplicateServiceNameRejected(t *testing.T) {
	m := NewManager()

	if _, err := m.NewServiceHandle("worker"); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}
	if _, err := m.NewServiceHandle("worker"); err == nil {
		t.Fatal("同名任务的重复注册应被拒绝")
	}
}

func TestCancelFreesNameImmediately(t *testing.T) {
	m := NewManager()

	h, err := m.NewServiceHandle("worker")
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 模拟一个还睡在Sleep里的循环：Cancel后不等goroutine醒来，
	// 同名任务必须可以立即重新注册
	h.Cancel()
	h2, err := m.NewServiceHandle("worker")
	if err != nil {
		t.Fatalf("Cancel后立即重新注册失败: %v", err)
	}

	// 旧循环醒来后的deferred Close是无害的空操作，不影响新句柄
	h.Close()
	h2.Close()
	if remaining := m.WaitWithTimeout(time.Second); len(remaining) != 0 {
		t.Errorf("所有任务注销后仍有残留: %v", remaining)
	}
}

func TestRunPeriodicStopsOnCancel(t *testing.T) {
	m := NewManager()

	h, err := m.NewServiceHandle("ticker")
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	done := make(chan struct{})
	go func() {
		h.RunPeriodic(time.Millisecond, func(time.Time) error { return nil }, nil)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	h.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cancel后循环未退出")
	}
}
