package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/redis/go-redis/v9"
)

// Publish 把一份实时快照刷写到远程存储。
// 写入是尽力而为的：失败由调用方记录日志，下一次tick携带更新的快照自然覆盖，
// 因此这里没有重试队列。
func Publish(ctx context.Context, snap *status.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("无法序列化快照 %s: %w", snap.DocKey(), err)
	}

	// 三个键在一个pipeline里一起写，减少往返
	pipe := database.RDB.Pipeline()
	pipe.HSet(ctx, SnapshotKey(snap.Day), snap.UserID, payload)
	pipe.ZAdd(ctx, ActiveKey(snap.Day), redis.Z{Score: float64(snap.UpdatedAt), Member: snap.UserID})
	pipe.SAdd(ctx, DirtyKey(snap.Day), snap.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("刷写快照 %s 到Redis失败: %w", snap.DocKey(), err)
	}
	return nil
}

// Fetch 读取指定日键和坐席的远程快照。
// 快照不存在时返回 (nil, nil)，让调用方区分“没有快照”和“存储故障”。
func Fetch(ctx context.Context, day, userID string) (*status.Snapshot, error) {
	payload, err := database.RDB.HGet(ctx, SnapshotKey(day), userID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("从Redis读取快照 %s_%s 失败: %w", day, userID, err)
	}

	var snap status.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("解析快照 %s_%s 失败: %w", day, userID, err)
	}
	return &snap, nil
}

// Remove 从远程存储删除一个坐席当天的快照，三个键一起清理。
func Remove(ctx context.Context, day, userID string) error {
	pipe := database.RDB.Pipeline()
	pipe.HDel(ctx, SnapshotKey(day), userID)
	pipe.ZRem(ctx, ActiveKey(day), userID)
	pipe.SRem(ctx, DirtyKey(day), userID)
	_, err := pipe.Exec(ctx)
	return err
}
