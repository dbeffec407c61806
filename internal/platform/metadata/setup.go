package metadata

import (
	"fmt"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
)

// PrimeCachedDB migrates the metadata table. There is no cache to warm up.
func PrimeCachedDB() error {
	if err := database.DB.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	fmt.Println("Metadata数据库表迁移成功。")
	return nil
}
