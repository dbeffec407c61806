package api

import (
	"github.com/TeleSyriana/ccms-status-backend/internal/agent"
	"github.com/TeleSyriana/ccms-status-backend/internal/chat"
	"github.com/TeleSyriana/ccms-status-backend/internal/presence"
	"github.com/TeleSyriana/ccms-status-backend/internal/session"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(agent.LoadSessionMiddleware())
	{
		// 会话与状态相关的路由组 /api/session
		sessionRoutes := api.Group("/session")
		{
			sessionRoutes.POST("/login", session.PostLogin)
			sessionRoutes.POST("/logout", agent.RequireSessionMiddleware(), session.PostLogout)
			sessionRoutes.GET("/usage", agent.RequireSessionMiddleware(), session.GetUsage)
			sessionRoutes.POST("/status", agent.RequireSessionMiddleware(), session.PostStatus)
		}

		// 主管看板相关的路由组 /api/dashboard
		dashboardRoutes := api.Group("/dashboard", agent.RequireSessionMiddleware())
		{
			dashboardRoutes.GET("/summary", presence.GetSummary)
			dashboardRoutes.GET("/agents", presence.GetAgents)
		}

		// 聊天相关的路由组 /api/chat
		chatRoutes := api.Group("/chat", agent.RequireSessionMiddleware())
		{
			chatRoutes.GET("/presence", chat.GetPresence)
			chatRoutes.POST("/groups", chat.PostGroup)
			chatRoutes.GET("/groups", chat.GetGroups)
			chatRoutes.POST("/groups/:id/messages", chat.PostGroupMessage)
			chatRoutes.GET("/groups/:id/messages", chat.GetGroupMessages)
		}
	}
}
