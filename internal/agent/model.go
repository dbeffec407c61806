package agent

import (
	"time"

	"gorm.io/gorm"
)

// 坐席角色。权限控制由外部身份系统负责，这里只是名录里的展示属性。
const (
	RoleAgent      = "AGENT"
	RoleSupervisor = "SUPERVISOR"
)

// Agent 定义了坐席名录在SQLite中的持久化模型。
// 名录只存档案数据；账号口令归外部身份系统管。
type Agent struct {
	// Username 是坐席的业务主键，也是快照文档中的userId。
	Username string `gorm:"primarykey;type:varchar(64)" json:"username"`

	// Name 是显示名。
	Name string `json:"name"`

	// Role 是坐席角色（AGENT / SUPERVISOR）。
	Role string `json:"role"`

	// CCMS 是话务系统里的工号。
	CCMS string `json:"ccms"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
