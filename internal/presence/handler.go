package presence

import (
	"net/http"

	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
	"github.com/gin-gonic/gin"
)

// GetSummary 处理主管看板的按状态人数统计请求。
// GET /api/dashboard/summary
func GetSummary(c *gin.Context) {
	day := daykey.Today()
	counts, err := AggregateDay(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "无法读取快照数据: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "counts": counts})
}

// GetAgents 处理主管看板的坐席列表请求。
// GET /api/dashboard/agents
func GetAgents(c *gin.Context) {
	day := daykey.Today()
	agents, err := ListDayAgents(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "无法读取快照数据: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "agents": agents})
}
