package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Manager 是后台工作的生命周期协调器。
// 它由上层模块（shutdown协调器）创建和持有，并向每个后台任务分发句柄(Handle)。
// 会话的周期性tick、快照归档器等所有可取消的循环都必须通过它注册，
// 这样登出和停机才是一次显式调用，而不是依赖闭包被垃圾回收。
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 创建一个新的生命周期管理器。
func NewManager() *Manager {
	m := &Manager{
		services: make(map[string]bool),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle 为一个后台任务创建生命周期句柄。
// 同名任务不允许重复注册；会话tick使用 "session:<userID>" 形式的名字，
// 保证同一用户同一时刻只有一个tick循环存在。
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.services[name] {
		return nil, fmt.Errorf("生命周期管理器: 任务 '%s' 已被注册", name)
	}
	m.services[name] = true
	m.wg.Add(1)

	// 每个句柄持有从管理器派生的独立context：
	// 管理器Shutdown会取消所有任务，单个任务也可以通过Cancel单独退出（坐席登出）。
	ctx, cancel := context.WithCancel(m.ctx)

	// closeFn 幂等：名字只注销一次，wg.Done只调用一次。
	closeFn := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, exists := m.services[name]; !exists {
			return
		}
		delete(m.services, name)
		m.wg.Done()
	}

	return &Handle{
		ctx: ctx,
		// Cancel在发出取消信号的同时就注销名字，
		// 同名任务可以立即重新注册，不必等循环的goroutine醒来。
		Cancel: func() {
			cancel()
			closeFn()
		},
		Close: closeFn,
	}, nil
}

// Shutdown 向所有已注册的任务广播停机信号。
func (m *Manager) Shutdown() {
	m.cancel()
}

// WaitWithTimeout 等待所有已注册的任务退出，直到指定的超时。
// 返回超时后仍未退出的任务名，为空代表全部正常退出。
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	doneChan := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(doneChan)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-doneChan:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		return remaining
	}
}
