package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/presence"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/TeleSyriana/ccms-status-backend/pkg/lifecycle"
)

// noticeBreakLimit 是休息超限强制切换时推送给坐席的提示文案。
// 它随下一次usage查询返回UI，与原始产品的横幅文案一致。
const noticeBreakLimit = "Break time limit reached"

// Session 是一个已登录坐席的会话上下文，台账的唯一持有者。
// 台账的所有修改（结转、切换）都在s.mu下串行执行，
// 这样tick循环和HTTP请求之间不会交错出半成品状态。
type Session struct {
	mu sync.Mutex

	ledger *status.Ledger
	policy status.BreakPolicy

	// handle 是会话tick循环的生命周期句柄；登出时Cancel它。
	handle *lifecycle.Handle

	// notice 是待推送的一次性用户提示，读取后即清空。
	notice string
}

// UserID 返回会话所属坐席的userId。
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.State().UserID
}

// Day 返回会话台账的日键。
func (s *Session) Day() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.State().Day
}

// ChangeStatus 执行一次用户发起的状态切换，随后立即（非阻塞地）刷写快照。
func (s *Session) ChangeStatus(newStatus status.Status, now time.Time) error {
	s.mu.Lock()
	err := s.ledger.TransitionTo(newStatus, now)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.FlushAsync(now)
	return nil
}

// tick 是周期性tick的循环体：检查休息上限，然后刷写实时快照。
// 刷写失败只记录，不中断循环——下一次tick携带更新的快照自然覆盖。
func (s *Session) tick(now time.Time) error {
	s.mu.Lock()
	forced := s.policy.EnforceOnTick(s.ledger, now)
	if forced {
		s.notice = noticeBreakLimit
	}
	snap := s.ledger.LiveSnapshot(now)
	s.mu.Unlock()

	if forced {
		fmt.Printf("会话 %s: 休息时间用尽，已强制切换为不可用。\n", snap.UserID)
	}
	return presence.Publish(s.handle.Ctx(), &snap)
}

// Flush 同步刷写一份实时快照到远程存储。
func (s *Session) Flush(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	snap := s.ledger.LiveSnapshot(now)
	s.mu.Unlock()
	return presence.Publish(ctx, &snap)
}

// FlushAsync 在后台刷写快照，失败只记录日志。
// 状态切换后的即时刷写用它，避免阻塞HTTP响应。
func (s *Session) FlushAsync(now time.Time) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("严重错误: 异步刷写快照的goroutine发生panic: %v\n", r)
			}
		}()
		if err := s.Flush(context.Background(), now); err != nil {
			fmt.Printf("异步刷写快照失败（将由下一次tick覆盖）: %v\n", err)
		}
	}()
}

// UsageView 是返回给前端的实时用量视图模型。
type UsageView struct {
	UserID            string           `json:"userId"`
	Name              string           `json:"name"`
	Role              string           `json:"role"`
	Day               string           `json:"day"`
	Status            status.Status    `json:"status"`
	Live              status.LiveUsage `json:"live"`
	WorkedMinutes     float64          `json:"workedMinutes"`
	WorkTargetMin     float64          `json:"workTargetMin"`
	BreakLimitMin     float64          `json:"breakLimitMin"`
	BreakRemainingMin float64          `json:"breakRemainingMin"`
	Notice            string           `json:"notice,omitempty"`
}

// Usage 推导“截至now”的用量视图，并取走待推送的一次性提示。
func (s *Session) Usage(now time.Time) UsageView {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ledger.State()
	live := s.ledger.ComputeLiveUsage(now)

	remaining := s.ledger.BreakLimit() - live.BreakUsed
	if remaining < 0 {
		remaining = 0
	}

	view := UsageView{
		UserID:            state.UserID,
		Name:              state.Name,
		Role:              state.Role,
		Day:               state.Day,
		Status:            state.Status,
		Live:              live,
		WorkedMinutes:     status.WorkedMinutes(live),
		WorkTargetMin:     workTargetMin,
		BreakLimitMin:     s.ledger.BreakLimit(),
		BreakRemainingMin: remaining,
		Notice:            s.notice,
	}
	s.notice = ""
	return view
}
