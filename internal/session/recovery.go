package session

import (
	"context"
	"fmt"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/presence"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
)

// resolveDayState 在登录时决定“今天”的权威起始台账。
// 同进程内还活着的同日会话（规格里的同设备缓存）在Login里已被优先续用，
// 走到这里说明需要从远程快照恢复或全新初始化：
//
//  1. 远程有今天的快照：还原分钟桶和状态，但把lastStatusChangeAt重置为now——
//     设备离线期间的时间不补记进任何桶（有意的简化，离线时间直接丢弃）。
//  2. 远程没有快照：当天首次登录，全新初始化。
//  3. 远程读取失败：降级为全新初始化。工时记录是次要的，
//     绝不能因为存储故障把坐席挡在系统外面；错误只记录日志。
//
// 日键不等于今天的快照一律视为不存在（陈旧台账绝不恢复）。
func resolveDayState(ctx context.Context, userID, name, role string, now time.Time) status.DayState {
	today := daykey.FromTime(now)

	snap, err := presence.Fetch(ctx, today, userID)
	if err != nil {
		fmt.Printf("会话恢复: 读取远程快照失败，降级为全新台账: %v\n", err)
		return status.NewDayState(userID, name, role, now)
	}

	if snap == nil || !daykey.IsToday(snap.Day, now) {
		return status.NewDayState(userID, name, role, now)
	}

	state := status.FromSnapshot(snap)
	// 名录是权威的档案来源，快照里的展示字段可能已过期
	state.Name = name
	state.Role = role
	state.LastStatusChangeAt = now
	fmt.Printf("会话恢复: %s 从远程快照恢复（状态 %s，离线时间不计入）。\n", userID, state.Status)
	return state
}
