package agent

import (
	"errors"
	"fmt"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"gorm.io/gorm"
)

// IsKnownAgent 检查一个userId是否存在于名录中。
// 它只查询Redis缓存，以获得最高性能；Redis不可用时退回SQLite。
func IsKnownAgent(username string) (bool, error) {
	if username == "" {
		return false, nil
	}

	if database.IsRedisHealthy() {
		exists, err := database.RDB.SIsMember(database.Ctx, KnownAgentsKey, username).Result()
		if err == nil {
			return exists, nil
		}
		fmt.Printf("坐席名录: Redis查询失败，退回SQLite: %v\n", err)
	}

	var count int64
	if err := database.DB.Model(&Agent{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询坐席名录失败: %w", err)
	}
	return count > 0, nil
}

// GetByUsername 按userId读取坐席档案。
func GetByUsername(username string) (*Agent, error) {
	var a Agent
	if err := database.DB.Where("username = ?", username).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取坐席档案失败: %w", err)
	}
	return &a, nil
}

// ListAll 返回名录中的全部坐席，按username排序。
func ListAll() ([]Agent, error) {
	var agents []Agent
	if err := database.DB.Order("username asc").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("读取坐席名录失败: %w", err)
	}
	return agents, nil
}
