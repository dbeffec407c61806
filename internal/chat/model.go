package chat

import (
	"time"

	"gorm.io/gorm"
)

// Group 定义了聊天群组在SQLite中的持久化模型。
// 成员列表以逗号分隔的userId串存储；群组规模是个位数，不值得开关联表。
type Group struct {
	// UUID 是群组的主键
	UUID string `gorm:"primarykey;type:varchar(36)" json:"id"`

	// Name 是群组显示名
	Name string `gorm:"not null" json:"name"`

	// Rules 是建群时填写的群规说明，可为空
	Rules string `json:"rules"`

	// Members 是逗号分隔的成员userId列表
	Members string `json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Message 定义了一条群组消息的持久化模型。
// 投递语义（已读回执、离线推送等）不在本服务范围内，
// 这里只保存历史并向Redis频道广播一份副本。
type Message struct {
	gorm.Model

	// GroupUUID 是消息所属群组
	GroupUUID string `gorm:"index;not null" json:"groupId"`

	// SenderID 是发送者的userId
	SenderID string `gorm:"not null" json:"senderId"`

	// Body 是消息正文
	Body string `gorm:"not null" json:"body"`
}
