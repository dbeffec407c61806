package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/metadata"
	"github.com/TeleSyriana/ccms-status-backend/internal/presence"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
	"github.com/TeleSyriana/ccms-status-backend/pkg/lifecycle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var archiveMutex sync.Mutex // 避免定时归档与停机归档竞态

// SnapshotArchive 是快照在SQLite中的持久化归档。
// Redis是当天的实时权威，SQLite是跨天的持久记录；
// (day, userId) 唯一，归档总是以更新的快照覆盖旧行。
type SnapshotArchive struct {
	gorm.Model

	Day    string `gorm:"uniqueIndex:idx_day_user;not null"`
	UserID string `gorm:"uniqueIndex:idx_day_user;not null"`

	Name               string
	Role               string
	Status             string
	LoginTime          int64
	LastStatusChangeAt int64
	BreakUsedMinutes   float64
	OperationMinutes   float64
	MeetingMinutes     float64
	HandlingMinutes    float64
	UnavailableMinutes float64
	UpdatedAtMs        int64
}

// MigrateDB 迁移归档表结构。
func MigrateDB() error {
	if err := database.DB.AutoMigrate(&SnapshotArchive{}); err != nil {
		return fmt.Errorf("无法迁移snapshot_archives表: %w", err)
	}
	fmt.Println("SnapshotArchive数据库表迁移成功。")
	return nil
}

// StartArchiveScheduler 启动后台的快照归档循环。
// 每个周期做三件事：归档当天的脏快照、清扫Redis里跨天残留的日键、
// 按保留期清理SQLite中的历史归档。
func StartArchiveScheduler(handle *lifecycle.Handle, interval time.Duration, retentionDays int) {
	fmt.Println("快照归档调度器已启动。")
	handle.RunPeriodic(interval, func(now time.Time) error {
		if !database.IsRedisHealthy() {
			fmt.Println("归档调度器: 检测到Redis不可用，跳过本次归档。")
			return nil
		}
		return RunArchive(handle.Ctx(), now, retentionDays)
	}, func(err error) {
		if err != context.Canceled && err != context.DeadlineExceeded {
			fmt.Printf("归档调度器错误: %v\n", err)
		}
	})
}

// RunArchive 执行一轮完整的归档。停机时也会直接调用它做最终归档。
func RunArchive(ctx context.Context, now time.Time, retentionDays int) error {
	archiveMutex.Lock()
	defer archiveMutex.Unlock()

	today := daykey.FromTime(now)

	count, err := archiveDay(ctx, today)
	if err != nil {
		return fmt.Errorf("归档 %s 失败: %w", today, err)
	}
	if count > 0 {
		fmt.Printf("归档调度器: 已归档 %s 的 %d 份快照。\n", today, count)
	}

	if err := sweepStaleDays(ctx, today); err != nil {
		return err
	}
	if err := purgeOldArchives(today, retentionDays); err != nil {
		return err
	}

	return metadata.SetLastArchiveTime(database.DB, now.UnixMilli())
}

// archiveDay 把指定日键下有变化的快照增量归档到SQLite。
// 返回归档的快照数量。
func archiveDay(ctx context.Context, day string) (count int, err error) {
	dirtyKey := presence.DirtyKey(day)
	processingKey := dirtyKey + presence.ProcessingDirtySuffix

	exists, err := database.RDB.Exists(ctx, dirtyKey).Result()
	if err != nil {
		return 0, fmt.Errorf("无法检查脏集合是否存在: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	// 原子地消费脏集合：读取成员并把集合改名为processing。
	// 归档期间新产生的脏标记会写入新的dirtyKey，不会丢失。
	pipe := database.RDB.TxPipeline()
	membersCmd := pipe.SMembers(ctx, dirtyKey)
	pipe.Rename(ctx, dirtyKey, processingKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("无法原子地消费脏集合: %w", err)
	}

	// processing集合已被消费；失败时把它合并回脏集合，下一轮重试
	defer func() {
		if err != nil {
			restore := database.RDB.TxPipeline()
			restore.SUnionStore(ctx, dirtyKey, dirtyKey, processingKey)
			restore.Del(ctx, processingKey)
			restore.Exec(ctx)
		} else {
			database.RDB.Del(ctx, processingKey)
		}
	}()

	userIDs, err := membersCmd.Result()
	if err != nil {
		return 0, fmt.Errorf("获取脏集合成员失败: %w", err)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	payloads, err := database.RDB.HMGet(ctx, presence.SnapshotKey(day), userIDs...).Result()
	if err != nil {
		return 0, fmt.Errorf("批量读取快照失败: %w", err)
	}

	rows := make([]SnapshotArchive, 0, len(payloads))
	for i, payload := range payloads {
		str, ok := payload.(string)
		if !ok {
			continue // 快照在脏标记之后被删除，跳过
		}
		var snap status.Snapshot
		if err := json.Unmarshal([]byte(str), &snap); err != nil {
			fmt.Printf("归档警告: 快照 %s_%s 无法解析，跳过: %v\n", day, userIDs[i], err)
			continue
		}
		rows = append(rows, SnapshotArchive{
			Day:                day,
			UserID:             snap.UserID,
			Name:               snap.Name,
			Role:               snap.Role,
			Status:             string(snap.Status),
			LoginTime:          snap.LoginTime,
			LastStatusChangeAt: snap.LastStatusChangeAt,
			BreakUsedMinutes:   snap.BreakUsedMinutes,
			OperationMinutes:   snap.OperationMinutes,
			MeetingMinutes:     snap.MeetingMinutes,
			HandlingMinutes:    snap.HandlingMinutes,
			UnavailableMinutes: snap.UnavailableMinutes,
			UpdatedAtMs:        snap.UpdatedAt,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err = database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "role", "status", "login_time", "last_status_change_at",
			"break_used_minutes", "operation_minutes", "meeting_minutes",
			"handling_minutes", "unavailable_minutes", "updated_at_ms",
		}),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("写入归档表失败: %w", err)
	}
	return len(rows), nil
}

// sweepStaleDays 归档并删除Redis里跨天残留的快照键。
// 正常情况下只有跨过午夜的那一轮会有活干。
func sweepStaleDays(ctx context.Context, today string) error {
	keys, err := database.RDB.Keys(ctx, presence.SnapshotKey("*")).Result()
	if err != nil {
		return fmt.Errorf("扫描快照键失败: %w", err)
	}

	for _, key := range keys {
		day := strings.TrimPrefix(key, presence.SnapshotKey(""))
		if day >= today {
			continue
		}
		// 先做一次最终归档，再删除该日的全部Redis键
		if _, err := archiveDay(ctx, day); err != nil {
			return fmt.Errorf("最终归档 %s 失败: %w", day, err)
		}
		pipe := database.RDB.Pipeline()
		pipe.Del(ctx, presence.SnapshotKey(day))
		pipe.Del(ctx, presence.ActiveKey(day))
		pipe.Del(ctx, presence.DirtyKey(day))
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("清理 %s 的Redis键失败: %w", day, err)
		}
		fmt.Printf("归档调度器: 已清理过期日键 %s。\n", day)
	}
	return nil
}

// purgeOldArchives 删除超过保留期的历史归档。
func purgeOldArchives(today string, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	todayTime, err := daykey.Parse(today)
	if err != nil {
		return err
	}
	cutoff := daykey.FromTime(todayTime.AddDate(0, 0, -retentionDays))

	lastPurge, err := metadata.GetLastPurgeDay(database.DB)
	if err != nil {
		return err
	}
	if lastPurge == cutoff {
		return nil // 本保留窗口已经清理过
	}

	if err := database.DB.Unscoped().Where("day < ?", cutoff).Delete(&SnapshotArchive{}).Error; err != nil {
		return fmt.Errorf("清理历史归档失败: %w", err)
	}
	return metadata.SetLastPurgeDay(database.DB, cutoff)
}
