package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/internal/agent"
	"github.com/TeleSyriana/ccms-status-backend/internal/platform/config"
	"github.com/TeleSyriana/ccms-status-backend/internal/status"
	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
	"github.com/TeleSyriana/ccms-status-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// LoginRequestBody 定义了登录请求体的JSON结构。
// 口令校验由外部身份系统完成，这里只接收已通过认证的userId。
type LoginRequestBody struct {
	UserID string `json:"userId" binding:"required"`
}

// StatusRequestBody 定义了状态切换请求体的JSON结构
type StatusRequestBody struct {
	Status status.Status `json:"status" binding:"required"`
}

// PostLogin 处理登录（含页面重载后的静默恢复）。
// POST /api/session/login
func PostLogin(c *gin.Context) {
	var body LoginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	now := time.Now()
	s, err := Login(c.Request.Context(), body.UserID, now)
	if err != nil {
		if errors.Is(err, ErrUnknownAgent) {
			c.JSON(http.StatusNotFound, gin.H{"error": "坐席不存在: " + body.UserID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败: " + err.Error()})
		return
	}

	// 会话Cookie绑定到今天的日键，隔天自动失效
	payload := token.SessionPayload{UserID: body.UserID, Day: daykey.FromTime(now)}
	cookie, err := token.EncodeCookie(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法签发会话Cookie"})
		return
	}
	maxAge := config.Cfg.Tracking.CookieMaxAgeHr * 60 * 60
	c.SetCookie(agent.CookieName, cookie, maxAge, "/", "", false, true)

	c.JSON(http.StatusOK, s.Usage(now))
}

// PostLogout 处理登出。
// POST /api/session/logout
func PostLogout(c *gin.Context) {
	userID, ok := agent.SessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "会话无效"})
		return
	}

	if err := Logout(c.Request.Context(), userID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登出失败: " + err.Error()})
		return
	}

	c.SetCookie(agent.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "已登出"})
}

// GetUsage 返回当前会话的实时用量视图。
// GET /api/session/usage
func GetUsage(c *gin.Context) {
	userID, ok := agent.SessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "会话无效"})
		return
	}

	s := Get(userID)
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "会话不存在，请重新登录"})
		return
	}

	c.JSON(http.StatusOK, s.Usage(time.Now()))
}

// PostStatus 处理用户发起的状态切换。
// POST /api/session/status
func PostStatus(c *gin.Context) {
	userID, ok := agent.SessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "会话无效"})
		return
	}

	s := Get(userID)
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "会话不存在，请重新登录"})
		return
	}

	var body StatusRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	now := time.Now()
	if err := s.ChangeStatus(body.Status, now); err != nil {
		view := s.Usage(now)
		switch {
		case errors.Is(err, status.ErrBreakExhausted):
			// 409让前端把状态选择器回滚到响应里携带的原状态
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "usage": view})
		case errors.Is(err, status.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "usage": view})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "状态切换失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, s.Usage(now))
}
