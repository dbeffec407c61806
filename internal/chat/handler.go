package chat

import (
	"net/http"

	"github.com/TeleSyriana/ccms-status-backend/internal/agent"
	"github.com/TeleSyriana/ccms-status-backend/internal/presence"
	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
	"github.com/gin-gonic/gin"
)

// CreateGroupRequestBody 定义了建群请求体的JSON结构
type CreateGroupRequestBody struct {
	Name    string   `json:"name" binding:"required"`
	Rules   string   `json:"rules"`
	Members []string `json:"members"`
}

// PostMessageRequestBody 定义了发消息请求体的JSON结构
type PostMessageRequestBody struct {
	Body string `json:"body" binding:"required"`
}

// groupView 是返回给前端的群组视图
type groupView struct {
	Group
	MemberIDs []string `json:"members"`
}

// PostGroup 处理建群请求。
// POST /api/chat/groups
func PostGroup(c *gin.Context) {
	userID, ok := agent.SessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "会话无效"})
		return
	}

	var body CreateGroupRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	// 建群人总是成员
	members := body.Members
	found := false
	for _, m := range members {
		if m == userID {
			found = true
			break
		}
	}
	if !found {
		members = append(members, userID)
	}

	g, err := CreateGroup(body.Name, body.Rules, members)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建群组失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, groupView{Group: *g, MemberIDs: g.MemberList()})
}

// GetGroups 返回当前坐席的群组列表。
// GET /api/chat/groups
func GetGroups(c *gin.Context) {
	userID, ok := agent.SessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "会话无效"})
		return
	}

	groups, err := ListGroups(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取群组失败: " + err.Error()})
		return
	}

	views := make([]groupView, 0, len(groups))
	for i := range groups {
		views = append(views, groupView{Group: groups[i], MemberIDs: groups[i].MemberList()})
	}
	c.JSON(http.StatusOK, gin.H{"groups": views})
}

// PostGroupMessage 处理群组内发消息。
// POST /api/chat/groups/:id/messages
func PostGroupMessage(c *gin.Context) {
	userID, ok := agent.SessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "会话无效"})
		return
	}

	g, err := GetGroup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取群组失败: " + err.Error()})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "群组不存在"})
		return
	}
	if !g.HasMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "不是该群组成员"})
		return
	}

	var body PostMessageRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	m, err := PostMessage(c.Request.Context(), g.UUID, userID, body.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发送消息失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetGroupMessages 返回群组最近的消息历史。
// GET /api/chat/groups/:id/messages
func GetGroupMessages(c *gin.Context) {
	userID, ok := agent.SessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "会话无效"})
		return
	}

	g, err := GetGroup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取群组失败: " + err.Error()})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "群组不存在"})
		return
	}
	if !g.HasMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "不是该群组成员"})
		return
	}

	messages, err := ListMessages(g.UUID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取消息失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetPresence 返回今天每个坐席的在线点级别，供聊天列表渲染。
// 今天没有快照的坐席不在结果里，前端按inactive处理。
// GET /api/chat/presence
func GetPresence(c *gin.Context) {
	day := daykey.Today()
	tiers, err := presence.DayTiers(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "无法读取在线状态: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "presence": tiers})
}
