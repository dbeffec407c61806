package session

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/agent"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/TeleSyriana/ccms-status-backend/internal/presence"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
	"github.com/TeleSyriana/ccms-status-backend/pkg/lifecycle"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testT0 = time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)

// setupTestEnv 准备内存SQLite、miniredis和session模块配置。
// tick间隔设为1小时，测试期间后台tick不会实际触发。
func setupTestEnv(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	database.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("无法打开内存SQLite: %v", err)
	}
	database.DB = db
	if err := db.AutoMigrate(&agent.Agent{}); err != nil {
		t.Fatalf("迁移agent表失败: %v", err)
	}
	if err := db.Create(&agent.Agent{Username: "agent01", Name: "Agent 01", Role: agent.RoleAgent, CCMS: "1001"}).Error; err != nil {
		t.Fatalf("写入测试坐席失败: %v", err)
	}
	if err := agent.WarmupCache(); err != nil {
		t.Fatalf("预热名录缓存失败: %v", err)
	}

	Setup(lifecycle.NewManager(), 45, 480, time.Hour)

	t.Cleanup(func() {
		for _, s := range ActiveSessions() {
			teardown(s)
		}
	})
	return mr
}

func TestFirstLoginOfDay(t *testing.T) {
	setupTestEnv(t)
	ctx := context.Background()

	s, err := Login(ctx, "agent01", testT0)
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	view := s.Usage(testT0)
	if view.Status != status.StatusOperation {
		t.Errorf("首次登录状态 = %s, 期望 in_operation", view.Status)
	}
	if view.WorkedMinutes != 0 {
		t.Errorf("首次登录不应有累计时间: %v", view.WorkedMinutes)
	}

	// 登录必须立即刷写一次快照
	snap, err := presence.Fetch(ctx, daykey.FromTime(testT0), "agent01")
	if err != nil || snap == nil {
		t.Fatalf("登录后未找到远程快照: (%v, %v)", snap, err)
	}
}

func TestUnknownAgentRejected(t *testing.T) {
	setupTestEnv(t)
	if _, err := Login(context.Background(), "ghost", testT0); err != ErrUnknownAgent {
		t.Errorf("期望 ErrUnknownAgent, 实际 %v", err)
	}
}

func TestSameDeviceReloadResume(t *testing.T) {
	setupTestEnv(t)
	ctx := context.Background()

	s1, err := Login(ctx, "agent01", testT0)
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if err := s1.ChangeStatus(status.StatusMeeting, testT0); err != nil {
		t.Fatalf("切换到会议失败: %v", err)
	}

	// 5分钟后页面重载：同进程会话必须被原样续用，时间没有缺口
	reloadAt := testT0.Add(5 * time.Minute)
	s2, err := Login(ctx, "agent01", reloadAt)
	if err != nil {
		t.Fatalf("重载登录失败: %v", err)
	}
	if s2 != s1 {
		t.Fatal("重载应续用原会话实例")
	}

	view := s2.Usage(reloadAt)
	if math.Abs(view.Live.Meeting-5) > 1e-6 {
		t.Errorf("重载后会议分钟 = %v, 期望完整的5分钟", view.Live.Meeting)
	}
}

func TestCrossDeviceResumeDiscardsOfflineTime(t *testing.T) {
	setupTestEnv(t)
	ctx := context.Background()

	// 远程有一份旧设备的快照：60分钟接线，lastStatusChangeAt = T0
	state := status.NewDayState("agent01", "Agent 01", "AGENT", testT0)
	state.Minutes.Operation = 60
	snap := state.ToSnapshot(testT0)
	if err := presence.Publish(ctx, &snap); err != nil {
		t.Fatalf("预置快照失败: %v", err)
	}

	// 新设备在T0+30分钟登录：离线的30分钟不计入任何桶
	loginAt := testT0.Add(30 * time.Minute)
	s, err := Login(ctx, "agent01", loginAt)
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	if got := s.ledger.State().LastStatusChangeAt; !got.Equal(loginAt) {
		t.Errorf("lastStatusChangeAt = %v, 期望重置为登录时刻 %v", got, loginAt)
	}
	view := s.Usage(loginAt)
	if math.Abs(view.Live.Operation-60) > 1e-6 {
		t.Errorf("恢复后接线分钟 = %v, 期望 60（离线时间被丢弃）", view.Live.Operation)
	}

	// 再过10分钟，只累积这10分钟
	view = s.Usage(loginAt.Add(10 * time.Minute))
	if math.Abs(view.Live.Operation-70) > 1e-6 {
		t.Errorf("接线分钟 = %v, 期望 70", view.Live.Operation)
	}
}

func TestStaleDaySnapshotIgnored(t *testing.T) {
	setupTestEnv(t)
	ctx := context.Background()

	// 昨天的快照存在，但今天登录时必须被无视
	yesterday := testT0.AddDate(0, 0, -1)
	state := status.NewDayState("agent01", "Agent 01", "AGENT", yesterday)
	state.Minutes.Operation = 200
	snap := state.ToSnapshot(yesterday)
	if err := presence.Publish(ctx, &snap); err != nil {
		t.Fatalf("预置快照失败: %v", err)
	}

	s, err := Login(ctx, "agent01", testT0)
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	view := s.Usage(testT0)
	if view.Live.Operation != 0 {
		t.Errorf("陈旧快照不应被恢复: operation = %v", view.Live.Operation)
	}
	if view.Day != daykey.FromTime(testT0) {
		t.Errorf("台账日键 = %s, 期望今天", view.Day)
	}
}

func TestRemoteFailureFallsBackToFresh(t *testing.T) {
	mr := setupTestEnv(t)
	ctx := context.Background()

	// 模拟Redis故障：登录必须降级为全新台账而不是失败
	mr.Close()

	s, err := Login(ctx, "agent01", testT0)
	if err != nil {
		t.Fatalf("Redis故障时登录不应失败: %v", err)
	}
	view := s.Usage(testT0)
	if view.Status != status.StatusOperation || view.WorkedMinutes != 0 {
		t.Errorf("降级后的台账应是全新的: %+v", view)
	}
}

func TestLogoutStopsSessionAndFlushes(t *testing.T) {
	setupTestEnv(t)
	ctx := context.Background()

	s, err := Login(ctx, "agent01", testT0)
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if err := s.ChangeStatus(status.StatusHandling, testT0); err != nil {
		t.Fatalf("切换失败: %v", err)
	}

	logoutAt := testT0.Add(12 * time.Minute)
	if err := Logout(ctx, "agent01", logoutAt); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}

	if Get("agent01") != nil {
		t.Error("登出后会话应从注册表移除")
	}

	// 最终快照：话后处理12分钟，状态不可用
	snap, err := presence.Fetch(ctx, daykey.FromTime(testT0), "agent01")
	if err != nil || snap == nil {
		t.Fatalf("登出后未找到最终快照: (%v, %v)", snap, err)
	}
	if snap.Status != status.StatusUnavailable {
		t.Errorf("最终快照状态 = %s, 期望 unavailable", snap.Status)
	}
	if math.Abs(snap.HandlingMinutes-12) > 1e-6 {
		t.Errorf("最终快照话后处理分钟 = %v, 期望 12", snap.HandlingMinutes)
	}
}

func TestImmediateReloginAfterLogout(t *testing.T) {
	setupTestEnv(t)
	ctx := context.Background()

	if _, err := Login(ctx, "agent01", testT0); err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	logoutAt := testT0.Add(20 * time.Minute)
	if err := Logout(ctx, "agent01", logoutAt); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}

	// 登出后立即重新登录：tick名字在Cancel时同步释放，
	// 不依赖旧循环的goroutine先醒来
	s, err := Login(ctx, "agent01", logoutAt)
	if err != nil {
		t.Fatalf("登出后立即重新登录失败: %v", err)
	}

	// 同日重新登录从登出时的远程快照恢复：不可用，接线20分钟
	view := s.Usage(logoutAt)
	if view.Status != status.StatusUnavailable {
		t.Errorf("重新登录后状态 = %s, 期望 unavailable（恢复自登出快照）", view.Status)
	}
	if math.Abs(view.Live.Operation-20) > 1e-6 {
		t.Errorf("重新登录后接线分钟 = %v, 期望 20", view.Live.Operation)
	}
}
