package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/TeleSyriana/ccms-status-backend/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// channelPrefix 是群组消息广播用的Redis频道前缀。
// 频道: chat:room:{groupUUID}
const channelPrefix = "chat:room:"

// CreateGroup 创建一个新群组并返回它。
func CreateGroup(name, rules string, members []string) (*Group, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("无法生成群组UUID: %w", err)
	}

	g := Group{
		UUID:    newUUID.String(),
		Name:    name,
		Rules:   rules,
		Members: strings.Join(members, ","),
	}
	if err := database.DB.Create(&g).Error; err != nil {
		return nil, fmt.Errorf("无法创建群组: %w", err)
	}
	return &g, nil
}

// ListGroups 返回包含指定坐席的所有群组，最新创建的在前。
// userID为空时返回全部群组。
func ListGroups(userID string) ([]Group, error) {
	var groups []Group
	query := database.DB.Order("created_at desc")
	if userID != "" {
		// 成员串两侧补上分隔符再匹配，避免 "dema" 命中 "demario"
		query = query.Where("',' || members || ',' LIKE ?", "%,"+userID+",%")
	}
	if err := query.Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("无法读取群组列表: %w", err)
	}
	return groups, nil
}

// MemberList 把存储态的成员串还原为切片。
func (g *Group) MemberList() []string {
	if g.Members == "" {
		return nil
	}
	return strings.Split(g.Members, ",")
}

// HasMember 判断坐席是否在群组里。
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.MemberList() {
		if m == userID {
			return true
		}
	}
	return false
}

// GetGroup 按UUID读取群组，不存在时返回nil。
func GetGroup(groupUUID string) (*Group, error) {
	var g Group
	err := database.DB.Where("uuid = ?", groupUUID).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("无法读取群组: %w", err)
	}
	return &g, nil
}

// PostMessage 保存一条群组消息，然后向Redis频道广播一份副本。
// 广播是尽力而为的：失败只记录，消息本身已经落库，历史查询不受影响。
func PostMessage(ctx context.Context, groupUUID, senderID, body string) (*Message, error) {
	m := Message{
		GroupUUID: groupUUID,
		SenderID:  senderID,
		Body:      body,
	}
	if err := database.DB.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("无法保存消息: %w", err)
	}

	payload, err := json.Marshal(&m)
	if err == nil {
		if err := database.RDB.Publish(ctx, channelPrefix+groupUUID, payload).Err(); err != nil {
			fmt.Printf("聊天: 广播消息到Redis频道失败: %v\n", err)
		}
	}
	return &m, nil
}

// ListMessages 返回群组最近的limit条消息，按时间正序。
func ListMessages(groupUUID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []Message
	err := database.DB.
		Where("group_uuid = ?", groupUUID).
		Order("id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取消息历史: %w", err)
	}

	// 倒序查出最近的limit条，再翻回正序返回
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
