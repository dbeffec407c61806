package agent

import (
	"testing"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDirectory 准备内存SQLite和miniredis，写入一个坐席并预热名录缓存。
func setupTestDirectory(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	database.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("无法打开内存SQLite: %v", err)
	}
	database.DB = db
	if err := db.AutoMigrate(&Agent{}); err != nil {
		t.Fatalf("迁移agent表失败: %v", err)
	}
	if err := db.Create(&Agent{Username: "agent01", Name: "Agent 01", Role: RoleAgent, CCMS: "1001"}).Error; err != nil {
		t.Fatalf("写入测试坐席失败: %v", err)
	}
	if err := WarmupCache(); err != nil {
		t.Fatalf("预热名录缓存失败: %v", err)
	}
	return mr
}

func TestIsKnownAgentRedisFastPath(t *testing.T) {
	setupTestDirectory(t)

	known, err := IsKnownAgent("agent01")
	if err != nil {
		t.Fatalf("IsKnownAgent 失败: %v", err)
	}
	if !known {
		t.Error("预热后的坐席应命中缓存")
	}

	known, err = IsKnownAgent("ghost")
	if err != nil {
		t.Fatalf("IsKnownAgent 失败: %v", err)
	}
	if known {
		t.Error("名录外的userId不应命中")
	}

	// 只在Redis里的成员依然命中，证明快路径没有落到SQLite
	if err := database.RDB.SAdd(database.Ctx, KnownAgentsKey, "redis-only").Err(); err != nil {
		t.Fatalf("写入缓存失败: %v", err)
	}
	known, err = IsKnownAgent("redis-only")
	if err != nil {
		t.Fatalf("IsKnownAgent 失败: %v", err)
	}
	if !known {
		t.Error("快路径应直接信任Redis缓存")
	}
}

func TestIsKnownAgentFallsBackToSQLite(t *testing.T) {
	mr := setupTestDirectory(t)

	// Redis故障时名录检查退回SQLite，坐席依然可以登录
	mr.Close()

	known, err := IsKnownAgent("agent01")
	if err != nil {
		t.Fatalf("降级查询失败: %v", err)
	}
	if !known {
		t.Error("SQLite中的坐席在降级路径下应命中")
	}

	known, err = IsKnownAgent("ghost")
	if err != nil {
		t.Fatalf("降级查询失败: %v", err)
	}
	if known {
		t.Error("名录外的userId在降级路径下不应命中")
	}
}

func TestIsKnownAgentEmptyUsername(t *testing.T) {
	setupTestDirectory(t)

	known, err := IsKnownAgent("")
	if err != nil || known {
		t.Errorf("空userId应直接返回 (false, nil), 实际 (%v, %v)", known, err)
	}
}
