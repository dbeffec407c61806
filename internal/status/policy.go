package status

import "time"

// BreakPolicy 负责执行每日休息上限。
// 它是系统里唯一会发起非用户触发的状态切换的组件。
type BreakPolicy struct {
	LimitMin float64
}

// CanEnterBreak 判断此刻是否还允许进入休息状态。
// 与Ledger.TransitionTo的守卫使用同一个epsilon，两边的判定永远一致。
func (p BreakPolicy) CanEnterBreak(l *Ledger, now time.Time) bool {
	return l.ComputeLiveUsage(now).BreakUsed < p.LimitMin-breakEpsilon
}

// EnforceOnTick 在每次tick时检查休息上限。
// 如果坐席正处于休息且实时已用休息达到上限，则结转时间并强制切换到不可用，
// 返回true表示本次tick触发了强制切换（调用方据此向用户发一次提示）。
func (p BreakPolicy) EnforceOnTick(l *Ledger, now time.Time) bool {
	if l.State().Status != StatusBreak {
		return false
	}
	if l.ComputeLiveUsage(now).BreakUsed < p.LimitMin {
		return false
	}

	// 结转会把休息桶截断到上限；强制切换的目标状态不是休息，不会被守卫拒绝
	if err := l.TransitionTo(StatusUnavailable, now); err != nil {
		return false
	}
	return true
}
