package presence

import "github.com/TeleSyriana/ccms-status-backend/internal/status"

// Tier 是聊天侧在线点的三档显示级别。
// 聊天模块只消费这个推导结果，不感知具体的工作状态。
type Tier string

const (
	TierActive   Tier = "active"
	TierCaution  Tier = "caution"
	TierInactive Tier = "inactive"
)

// TierFor 把工作状态映射为显示级别：
// 接线/话后处理 → active，会议/休息 → caution，其余一律 inactive。
func TierFor(s status.Status) Tier {
	switch s.Normalize() {
	case status.StatusOperation, status.StatusHandling:
		return TierActive
	case status.StatusMeeting, status.StatusBreak:
		return TierCaution
	default:
		return TierInactive
	}
}
