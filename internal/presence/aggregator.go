package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
)

// StatusCounts 是主管看板的按状态人数统计。
// 字段名与前端图例一一对应。
type StatusCounts struct {
	Operation   int `json:"in_operation"`
	Break       int `json:"break"`
	Meeting     int `json:"meeting"`
	Handling    int `json:"handling"`
	Unavailable int `json:"unavailable"`
	Total       int `json:"total"`
}

// add 把一个（已归一化的）状态计入统计。
func (c *StatusCounts) add(s status.Status) {
	switch s {
	case status.StatusOperation:
		c.Operation++
	case status.StatusBreak:
		c.Break++
	case status.StatusMeeting:
		c.Meeting++
	case status.StatusHandling:
		c.Handling++
	default:
		c.Unavailable++
	}
	c.Total++
}

// AgentView 是主管看板上单个坐席的一行。
type AgentView struct {
	status.Snapshot
	PresenceTier Tier `json:"presenceTier"`
}

// loadDaySnapshots 读取指定日键下所有坐席的快照。
// 个别损坏的快照条目跳过并计数，不让一条坏数据拖垮整个看板。
func loadDaySnapshots(ctx context.Context, day string) ([]status.Snapshot, error) {
	entries, err := database.RDB.HGetAll(ctx, SnapshotKey(day)).Result()
	if err != nil {
		return nil, fmt.Errorf("从Redis读取 %s 的快照集合失败: %w", day, err)
	}

	snaps := make([]status.Snapshot, 0, len(entries))
	skipped := 0
	for userID, payload := range entries {
		var snap status.Snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			skipped++
			continue
		}
		if snap.UserID == "" {
			snap.UserID = userID
		}
		snaps = append(snaps, snap)
	}
	if skipped > 0 {
		fmt.Printf("聚合器警告: 日键 %s 下有 %d 条快照无法解析，已跳过。\n", day, skipped)
	}
	return snaps, nil
}

// AggregateDay 计算指定日键的按状态人数统计。
// 未知或缺失的状态值一律计入unavailable。
func AggregateDay(ctx context.Context, day string) (StatusCounts, error) {
	var counts StatusCounts

	snaps, err := loadDaySnapshots(ctx, day)
	if err != nil {
		return counts, err
	}
	for i := range snaps {
		counts.add(snaps[i].Status.Normalize())
	}
	return counts, nil
}

// ListDayAgents 返回指定日键下所有坐席的看板视图，按最近刷写时间倒序。
// 读取的是最终一致的快照：个别坐席的数据可能落后一个刷写周期。
func ListDayAgents(ctx context.Context, day string) ([]AgentView, error) {
	snaps, err := loadDaySnapshots(ctx, day)
	if err != nil {
		return nil, err
	}

	views := make([]AgentView, 0, len(snaps))
	for i := range snaps {
		views = append(views, AgentView{
			Snapshot:     snaps[i],
			PresenceTier: TierFor(snaps[i].Status),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].UpdatedAt > views[j].UpdatedAt
	})
	return views, nil
}

// DayTiers 返回指定日键下 userId → 显示级别 的映射，供聊天在线点使用。
// 当天没有快照的坐席不会出现在结果里，消费方应将缺失视为inactive。
func DayTiers(ctx context.Context, day string) (map[string]Tier, error) {
	snaps, err := loadDaySnapshots(ctx, day)
	if err != nil {
		return nil, err
	}

	tiers := make(map[string]Tier, len(snaps))
	for i := range snaps {
		tiers[snaps[i].UserID] = TierFor(snaps[i].Status)
	}
	return tiers, nil
}
