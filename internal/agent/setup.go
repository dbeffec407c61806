package agent

import (
	"fmt"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Agent{}); err != nil {
		return fmt.Errorf("无法迁移agent表: %w", err)
	}
	fmt.Println("Agent数据库表迁移成功。")
	return nil
}

// seedDemo 在名录为空时写入演示坐席。
// 与原始产品的演示账号一致；生产部署会由外部身份系统同步名录。
func seedDemo() error {
	var count int64
	if err := database.DB.Model(&Agent{}).Count(&count).Error; err != nil {
		return fmt.Errorf("无法统计坐席数量: %w", err)
	}
	if count > 0 {
		return nil
	}

	demo := []Agent{
		{Username: "agent01", Name: "Agent 01", Role: RoleAgent, CCMS: "1001"},
		{Username: "agent02", Name: "Agent 02", Role: RoleAgent, CCMS: "1002"},
		{Username: "dema", Name: "Supervisor Dema", Role: RoleSupervisor, CCMS: "2001"},
	}
	if err := database.DB.Create(&demo).Error; err != nil {
		return fmt.Errorf("写入演示坐席失败: %w", err)
	}
	fmt.Printf("坐席名录为空，已写入 %d 个演示坐席。\n", len(demo))
	return nil
}

// WarmupCache 从SQLite加载所有坐席的username，并预热到Redis的Set中
func WarmupCache() error {
	agents, err := ListAll()
	if err != nil {
		return err
	}

	if len(agents) == 0 {
		fmt.Println("无坐席数据，无需预热名录缓存。")
		return nil
	}

	usernames := make([]interface{}, len(agents))
	for i, a := range agents {
		usernames[i] = a.Username
	}

	// 使用Pipeline批量写入；先清空旧的缓存，确保数据一致性
	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, KnownAgentsKey)
	pipe.SAdd(database.Ctx, KnownAgentsKey, usernames...)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热坐席名录到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个坐席到Redis。\n", len(agents))
	return nil
}

// PrimeCachedDB 是agent模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := seedDemo(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
