package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/agent"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
	"github.com/TeleSyriana/ccms-status-backend/pkg/lifecycle"
)

// ErrUnknownAgent 表示登录的userId不在坐席名录中。
var ErrUnknownAgent = errors.New("坐席不存在")

// 模块级配置，由Setup在启动时注入。
var (
	manager       *lifecycle.Manager
	breakLimitMin float64
	workTargetMin float64
	tickInterval  time.Duration
)

// Setup 注入session模块的运行参数。
// manager是tick循环的生命周期管理器；其余参数来自tracking配置。
func Setup(m *lifecycle.Manager, limitMin, targetMin float64, tick time.Duration) {
	manager = m
	breakLimitMin = limitMin
	workTargetMin = targetMin
	tickInterval = tick
}

// Login 是登录（含静默恢复）的总入口，返回坐席当天的会话。
//
// 恢复的优先级与规格一致：
//  1. 注册表里还有同日的活跃会话（页面重载）：原样续用，
//     不重置lastStatusChangeAt——重载不是时间缺口。
//  2. 否则按resolveDayState从远程快照恢复或全新初始化，
//     立即刷写一次，然后启动周期性tick。
func Login(ctx context.Context, userID string, now time.Time) (*Session, error) {
	// 名录检查走Redis缓存的快路径（不可用时退回SQLite），
	// 通过后再读一次档案拿Name/Role
	known, err := agent.IsKnownAgent(userID)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, ErrUnknownAgent
	}
	a, err := agent.GetByUsername(userID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrUnknownAgent
	}

	if existing := getSession(userID); existing != nil {
		if daykey.IsToday(existing.Day(), now) {
			fmt.Printf("会话恢复: %s 续用进程内的同日会话。\n", userID)
			return existing, nil
		}
		// 跨天残留的会话是陈旧台账，拆掉后重新初始化
		fmt.Printf("会话恢复: %s 存在跨天的陈旧会话，丢弃。\n", userID)
		teardown(existing)
	}

	state := resolveDayState(ctx, userID, a.Name, a.Role, now)

	s := &Session{
		ledger: status.NewLedger(state, breakLimitMin),
		policy: status.BreakPolicy{LimitMin: breakLimitMin},
	}

	handle, err := manager.NewServiceHandle("session:" + userID)
	if err != nil {
		return nil, fmt.Errorf("无法注册会话tick: %w", err)
	}
	s.handle = handle

	putSession(s)

	// 解析完成后立即刷写一次，让主管看板第一时间看到该坐席
	if err := s.Flush(ctx, now); err != nil {
		fmt.Printf("登录后的首次快照刷写失败（将由tick补上）: %v\n", err)
	}

	go handle.RunPeriodic(tickInterval, s.tick, func(err error) {
		fmt.Printf("会话tick刷写失败（将由下一次tick覆盖）: %v\n", err)
	})

	return s, nil
}

// Get 返回userId对应的活跃会话，不存在时返回nil。
func Get(userID string) *Session {
	return getSession(userID)
}

// Logout 结束一个会话：结转时间并切换到不可用，做最后一次同步刷写，
// 然后停掉tick循环并从注册表移除。
func Logout(ctx context.Context, userID string, now time.Time) error {
	s := getSession(userID)
	if s == nil {
		return nil
	}

	s.mu.Lock()
	// 登出是到不可用的手动切换；目标不是休息，守卫不会拒绝
	if err := s.ledger.TransitionTo(status.StatusUnavailable, now); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if err := s.Flush(ctx, now); err != nil {
		fmt.Printf("登出时的最终快照刷写失败: %v\n", err)
	}

	teardown(s)
	fmt.Printf("会话 %s 已登出。\n", userID)
	return nil
}

// teardown 停止会话的tick循环并从注册表移除。
func teardown(s *Session) {
	if s.handle != nil {
		s.handle.Cancel()
	}
	removeSession(s)
}

// FlushAll 同步刷写所有活跃会话的快照。
// Redis恢复后的状态重建和优雅停机的最终刷写都用它；
// 注册表里的会话是内存中的权威状态，远程存储可以随时由它重建。
func FlushAll(ctx context.Context, now time.Time) {
	for _, s := range ActiveSessions() {
		if err := s.Flush(ctx, now); err != nil {
			fmt.Printf("刷写会话 %s 的快照失败: %v\n", s.UserID(), err)
		}
	}
}
