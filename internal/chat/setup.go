package chat

import (
	"fmt"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
)

// PrimeModule 是chat模块的初始化总入口
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&Group{}, &Message{}); err != nil {
		return fmt.Errorf("无法迁移chat表: %w", err)
	}
	fmt.Println("Chat数据库表迁移成功。")
	return nil
}
