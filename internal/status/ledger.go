package status

import "time"

// breakEpsilon 是判断休息额度是否耗尽时使用的容差（分钟）。
// 浮点累加会留下比一次tick小得多的残量，不能让坐席靠它再进一次休息。
const breakEpsilon = 0.01

// Ledger 持有一个坐席一天的DayState，负责回答“截至此刻各状态累积了多少分钟”，
// 并正确地执行状态切换。它本身不做任何并发控制，
// 由持有它的会话保证所有修改串行执行。
type Ledger struct {
	state    DayState
	limitMin float64
}

// NewLedger 用一个已解析好的DayState构造台账。
// limitMin 是每日休息分钟上限（默认45，见配置）。
func NewLedger(state DayState, limitMin float64) *Ledger {
	return &Ledger{state: state, limitMin: limitMin}
}

// State 返回存储态DayState的一个副本。
func (l *Ledger) State() DayState {
	return l.state
}

// BreakLimit 返回本台账使用的休息分钟上限。
func (l *Ledger) BreakLimit() float64 {
	return l.limitMin
}

// elapsedMinutes 计算自上次状态变更以来经过的分钟数。
// 时钟回拨导致的负值按零处理，绝不产生负的累积。
func (l *Ledger) elapsedMinutes(now time.Time) float64 {
	elapsed := now.Sub(l.state.LastStatusChangeAt).Minutes()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// ComputeLiveUsage 推导“截至now”的各状态分钟数。
// 纯函数：把自上次变更以来的时间加到当前状态对应的桶上，不修改存储态。
// BreakUsed超过上限时截断到上限（仅用于展示，存储态由SettleElapsed负责截断）。
func (l *Ledger) ComputeLiveUsage(now time.Time) LiveUsage {
	live := LiveUsage{
		BreakUsed:   l.state.Minutes.Break,
		Operation:   l.state.Minutes.Operation,
		Meeting:     l.state.Minutes.Meeting,
		Handling:    l.state.Minutes.Handling,
		Unavailable: l.state.Minutes.Unavailable,
	}

	elapsed := l.elapsedMinutes(now)
	switch l.state.Status {
	case StatusBreak:
		live.BreakUsed += elapsed
	case StatusOperation:
		live.Operation += elapsed
	case StatusMeeting:
		live.Meeting += elapsed
	case StatusHandling:
		live.Handling += elapsed
	default:
		live.Unavailable += elapsed
	}

	if live.BreakUsed > l.limitMin {
		live.BreakUsed = l.limitMin
	}
	return live
}

// SettleElapsed 把自上次变更以来的时间结转进当前状态的桶，并把
// lastStatusChangeAt推进到now。休息桶在结转时就截断到上限，
// 保证存储态永远满足 break ≤ 上限 的不变量。
// 用同一个now重复调用是幂等的：第二次的elapsed为零，整个调用是no-op。
func (l *Ledger) SettleElapsed(now time.Time) {
	elapsed := l.elapsedMinutes(now)
	if elapsed <= 0 {
		return
	}

	l.state.Minutes.Add(l.state.Status, elapsed)
	if l.state.Minutes.Break > l.limitMin {
		l.state.Minutes.Break = l.limitMin
	}
	l.state.LastStatusChangeAt = now
}

// TransitionTo 执行一次状态切换：先结转已流逝的时间，再切换状态。
// 当目标是休息且额度已耗尽（含epsilon容差）时返回ErrBreakExhausted，
// 此时存储态的status保持不变，调用方应回滚UI上的乐观选择。
func (l *Ledger) TransitionTo(newStatus Status, now time.Time) error {
	if !newStatus.IsValid() {
		return ErrInvalidStatus
	}

	l.SettleElapsed(now)

	if newStatus == StatusBreak && l.ComputeLiveUsage(now).BreakUsed >= l.limitMin-breakEpsilon {
		return ErrBreakExhausted
	}

	l.state.Status = newStatus
	l.state.LastStatusChangeAt = now
	return nil
}

// LiveSnapshot 生成包含未结转时间的实时快照，用于周期性刷写。
// 它基于ComputeLiveUsage，因此不会修改存储态。
func (l *Ledger) LiveSnapshot(now time.Time) Snapshot {
	live := l.ComputeLiveUsage(now)
	snap := l.state.ToSnapshot(now)
	snap.BreakUsedMinutes = live.BreakUsed
	snap.OperationMinutes = live.Operation
	snap.MeetingMinutes = live.Meeting
	snap.HandlingMinutes = live.Handling
	snap.UnavailableMinutes = live.Unavailable
	return snap
}

// WorkedMinutes 计算“已工作时长”：接线 + 会议 + 话后处理 + 已用休息。
// 不可用时间不计入。结果与每日工作目标（默认480分钟）比较后仅用于展示。
func WorkedMinutes(live LiveUsage) float64 {
	return live.Operation + live.Meeting + live.Handling + live.BreakUsed
}
