package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/agent"
	"github.com/TeleSyriana/ccms-status-backend/internal/chat"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/backup"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/metadata"
	"github.com/TeleSyriana/ccms-status-backend/internal/session"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeCachedDB(); err != nil {
		return err
	}
	if err := agent.PrimeCachedDB(); err != nil {
		return err
	}
	if err := backup.MigrateDB(); err != nil {
		return err
	}
	if err := chat.PrimeModule(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在Redis重启后重建其中的状态。
// 名录缓存从SQLite重新预热；当天的快照由各活跃会话重新刷写——
// 注册表里的会话持有内存中的权威台账，远程存储永远可以由它重建。
// 不在线的坐席的快照无法恢复，他们下次登录时会走全新初始化。
func RebuildCache() error {
	fmt.Println("开始Redis状态重建...")

	if err := agent.WarmupCache(); err != nil {
		return err
	}
	session.FlushAll(context.Background(), time.Now())

	fmt.Println("Redis状态重建完成。")
	return nil
}
