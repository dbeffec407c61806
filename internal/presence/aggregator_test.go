package presence

import (
	"context"
	"testing"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis 用miniredis替换全局Redis客户端。
func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	database.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr
}

func makeSnapshot(userID string, s status.Status, updatedAt int64) status.Snapshot {
	state := status.NewDayState(userID, "Agent "+userID, "AGENT", time.Date(2025, 6, 15, 8, 0, 0, 0, time.Local))
	snap := state.ToSnapshot(time.UnixMilli(updatedAt))
	snap.Status = s
	return snap
}

func TestPublishFetchRoundTrip(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	snap := makeSnapshot("agent01", status.StatusMeeting, 1000)
	if err := Publish(ctx, &snap); err != nil {
		t.Fatalf("Publish 失败: %v", err)
	}

	got, err := Fetch(ctx, snap.Day, "agent01")
	if err != nil {
		t.Fatalf("Fetch 失败: %v", err)
	}
	if got == nil || got.Status != status.StatusMeeting || got.UserID != "agent01" {
		t.Errorf("Fetch 结果不一致: %+v", got)
	}

	// 不存在的快照返回 (nil, nil)
	missing, err := Fetch(ctx, snap.Day, "nobody")
	if err != nil || missing != nil {
		t.Errorf("缺失快照应返回 (nil, nil), 实际 (%v, %v)", missing, err)
	}
}

func TestAggregateDayCounts(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	fixtures := []struct {
		userID string
		status status.Status
	}{
		{"a1", status.StatusOperation},
		{"a2", status.StatusOperation},
		{"a3", status.StatusBreak},
		{"a4", status.StatusMeeting},
		{"a5", status.Status("mystery")}, // 未知状态必须计入unavailable
	}
	var day string
	for i, f := range fixtures {
		snap := makeSnapshot(f.userID, f.status, int64(1000+i))
		day = snap.Day
		if err := Publish(ctx, &snap); err != nil {
			t.Fatalf("Publish 失败: %v", err)
		}
	}

	counts, err := AggregateDay(ctx, day)
	if err != nil {
		t.Fatalf("AggregateDay 失败: %v", err)
	}
	if counts.Operation != 2 || counts.Break != 1 || counts.Meeting != 1 || counts.Unavailable != 1 || counts.Total != 5 {
		t.Errorf("统计结果错误: %+v", counts)
	}
}

func TestListDayAgentsOrderAndTier(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	older := makeSnapshot("a1", status.StatusBreak, 1000)
	newer := makeSnapshot("a2", status.StatusHandling, 2000)
	for _, s := range []status.Snapshot{older, newer} {
		snap := s
		if err := Publish(ctx, &snap); err != nil {
			t.Fatalf("Publish 失败: %v", err)
		}
	}

	agents, err := ListDayAgents(ctx, older.Day)
	if err != nil {
		t.Fatalf("ListDayAgents 失败: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("坐席数量 = %d, 期望 2", len(agents))
	}
	// 最近刷写的排在前面
	if agents[0].UserID != "a2" {
		t.Errorf("排序错误: 第一位是 %s", agents[0].UserID)
	}
	if agents[0].PresenceTier != TierActive || agents[1].PresenceTier != TierCaution {
		t.Errorf("显示级别错误: %+v", agents)
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		in   status.Status
		want Tier
	}{
		{status.StatusOperation, TierActive},
		{status.StatusHandling, TierActive},
		{status.StatusMeeting, TierCaution},
		{status.StatusBreak, TierCaution},
		{status.StatusUnavailable, TierInactive},
		{status.Status("mystery"), TierInactive},
	}
	for _, c := range cases {
		if got := TierFor(c.in); got != c.want {
			t.Errorf("TierFor(%s) = %s, 期望 %s", c.in, got, c.want)
		}
	}
}

func TestRemoveClearsAllKeys(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	keep := makeSnapshot("a1", status.StatusOperation, 1000)
	gone := makeSnapshot("a2", status.StatusBreak, 2000)
	for _, s := range []status.Snapshot{keep, gone} {
		snap := s
		if err := Publish(ctx, &snap); err != nil {
			t.Fatalf("Publish 失败: %v", err)
		}
	}

	if err := Remove(ctx, gone.Day, "a2"); err != nil {
		t.Fatalf("Remove 失败: %v", err)
	}

	// 快照、活跃榜、脏集合都不应再有该坐席
	if snap, err := Fetch(ctx, gone.Day, "a2"); err != nil || snap != nil {
		t.Errorf("删除后仍能读到快照: (%v, %v)", snap, err)
	}
	counts, err := AggregateDay(ctx, gone.Day)
	if err != nil {
		t.Fatalf("AggregateDay 失败: %v", err)
	}
	if counts.Total != 1 || counts.Break != 0 {
		t.Errorf("删除后的统计错误: %+v", counts)
	}
	dirty, err := database.RDB.SMembers(ctx, DirtyKey(gone.Day)).Result()
	if err != nil {
		t.Fatalf("读取脏集合失败: %v", err)
	}
	for _, m := range dirty {
		if m == "a2" {
			t.Error("删除后脏集合仍包含该坐席")
		}
	}
}
