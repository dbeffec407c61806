package agent

import (
	"net/http"
	"time"

	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
	"github.com/TeleSyriana/ccms-status-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName 是会话Cookie的名字
	CookieName = "ccms-session"
	// UserIDKey 是Gin上下文中存放已验证userId的键
	UserIDKey = "userID"
)

// LoadSessionMiddleware 读取并验证会话Cookie，把userId放入Gin上下文。
// Cookie缺失、签名无效或日键不是今天时，上下文中不会有userId；
// 是否拒绝请求由RequireSessionMiddleware决定。
func LoadSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(CookieName)
		if err == nil {
			payload, err := token.DecodeCookie(value)
			// 昨天签发的Cookie对今天无效，强制走一次完整的登录恢复流程
			if err == nil && daykey.IsToday(payload.Day, time.Now()) {
				c.Set(UserIDKey, payload.UserID)
			}
		}
		c.Next()
	}
}

// RequireSessionMiddleware 拒绝没有有效会话的请求。
// 必须挂在LoadSessionMiddleware之后。
func RequireSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(UserIDKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "会话无效或已过期，请重新登录"})
			return
		}
		c.Next()
	}
}

// SessionUserID 从Gin上下文取出已验证的userId。
func SessionUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := v.(string)
	return userID, ok && userID != ""
}
