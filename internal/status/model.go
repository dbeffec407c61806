package status

import (
	"time"

	"github.com/TeleSyriana/ccms-status-backend/pkg/daykey"
)

// Status 定义了坐席工作状态的枚举类型。
// 五种状态互斥，任意时刻坐席恰好处于其中一种。
type Status string

const (
	// StatusOperation 表示坐席正在接线
	StatusOperation Status = "in_operation"
	// StatusBreak 表示坐席在休息，受每日休息上限约束
	StatusBreak Status = "break"
	// StatusMeeting 表示坐席在开会
	StatusMeeting Status = "meeting"
	// StatusHandling 表示坐席在做话后处理
	StatusHandling Status = "handling"
	// StatusUnavailable 表示坐席不可用（登出、休息超限被强制转入）
	StatusUnavailable Status = "unavailable"
)

// IsValid 判断一个状态值是否是五种已知状态之一。
func (s Status) IsValid() bool {
	switch s {
	case StatusOperation, StatusBreak, StatusMeeting, StatusHandling, StatusUnavailable:
		return true
	}
	return false
}

// Normalize 把未知或缺失的状态归入unavailable。
// 聚合端消费别人写入的快照时必须用它兜底。
func (s Status) Normalize() Status {
	if s.IsValid() {
		return s
	}
	return StatusUnavailable
}

// MinuteBuckets 记录一天内累计在各状态上的分钟数。
// 分钟是浮点数，因为不足一分钟的时间也会连续累积。
type MinuteBuckets struct {
	Operation   float64 `json:"operationMinutes"`
	Break       float64 `json:"breakUsedMinutes"`
	Meeting     float64 `json:"meetingMinutes"`
	Handling    float64 `json:"handlingMinutes"`
	Unavailable float64 `json:"unavailableMinutes"`
}

// Get 返回指定状态桶的当前值。
func (b *MinuteBuckets) Get(s Status) float64 {
	switch s {
	case StatusOperation:
		return b.Operation
	case StatusBreak:
		return b.Break
	case StatusMeeting:
		return b.Meeting
	case StatusHandling:
		return b.Handling
	default:
		return b.Unavailable
	}
}

// Add 向指定状态桶累加分钟数。
func (b *MinuteBuckets) Add(s Status, minutes float64) {
	switch s {
	case StatusOperation:
		b.Operation += minutes
	case StatusBreak:
		b.Break += minutes
	case StatusMeeting:
		b.Meeting += minutes
	case StatusHandling:
		b.Handling += minutes
	default:
		b.Unavailable += minutes
	}
}

// DayState 是一个坐席一个日历日的台账状态。
// 它在当天由该坐席自己的会话独占持有和修改，其他人只读快照。
type DayState struct {
	UserID string
	Name   string
	Role   string

	// Day 是本地时区下的日键（YYYY-MM-DD）。
	// 日键不等于“今天”的DayState是陈旧的，绝不能被恢复。
	Day string

	Status             Status
	LastStatusChangeAt time.Time
	LoginAt            time.Time

	Minutes MinuteBuckets
}

// NewDayState 创建当天首次登录时的全新台账：
// 各状态桶清零，状态默认为接线中，loginAt和lastStatusChangeAt都取now。
func NewDayState(userID, name, role string, now time.Time) DayState {
	return DayState{
		UserID:             userID,
		Name:               name,
		Role:               role,
		Day:                daykey.FromTime(now),
		Status:             StatusOperation,
		LastStatusChangeAt: now,
		LoginAt:            now,
	}
}

// LiveUsage 是“截至此刻”的各状态分钟数视图。
// 它永远是按需推导的，不落盘；BreakUsed已按上限截断。
type LiveUsage struct {
	BreakUsed   float64 `json:"breakUsed"`
	Operation   float64 `json:"operation"`
	Meeting     float64 `json:"meeting"`
	Handling    float64 `json:"handling"`
	Unavailable float64 `json:"unavailable"`
}

// Snapshot 是刷写到远程存储的快照文档，按 "{day}_{userId}" 键入。
// 字段名是对外的线格式，主管看板和聊天在线点都按这个结构消费。
type Snapshot struct {
	UserID             string  `json:"userId"`
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	Day                string  `json:"day"`
	Status             Status  `json:"status"`
	LoginTime          int64   `json:"loginTime"`          // epoch ms
	LastStatusChangeAt int64   `json:"lastStatusChangeAt"` // epoch ms
	BreakUsedMinutes   float64 `json:"breakUsedMinutes"`
	OperationMinutes   float64 `json:"operationMinutes"`
	MeetingMinutes     float64 `json:"meetingMinutes"`
	HandlingMinutes    float64 `json:"handlingMinutes"`
	UnavailableMinutes float64 `json:"unavailableMinutes"`
	UpdatedAt          int64   `json:"updatedAt"` // epoch ms，由服务端在刷写时赋值
}

// DocKey 返回快照文档的键。
func (s *Snapshot) DocKey() string {
	return s.Day + "_" + s.UserID
}

// ToSnapshot 将存储态的DayState转换为线格式快照。
func (d *DayState) ToSnapshot(updatedAt time.Time) Snapshot {
	return Snapshot{
		UserID:             d.UserID,
		Name:               d.Name,
		Role:               d.Role,
		Day:                d.Day,
		Status:             d.Status,
		LoginTime:          d.LoginAt.UnixMilli(),
		LastStatusChangeAt: d.LastStatusChangeAt.UnixMilli(),
		BreakUsedMinutes:   d.Minutes.Break,
		OperationMinutes:   d.Minutes.Operation,
		MeetingMinutes:     d.Minutes.Meeting,
		HandlingMinutes:    d.Minutes.Handling,
		UnavailableMinutes: d.Minutes.Unavailable,
		UpdatedAt:          updatedAt.UnixMilli(),
	}
}

// FromSnapshot 将远程快照还原为DayState。
// 跨设备恢复时调用方会随后把LastStatusChangeAt重置为now（离线时间不补记）。
func FromSnapshot(snap *Snapshot) DayState {
	return DayState{
		UserID:             snap.UserID,
		Name:               snap.Name,
		Role:               snap.Role,
		Day:                snap.Day,
		Status:             snap.Status.Normalize(),
		LastStatusChangeAt: time.UnixMilli(snap.LastStatusChangeAt),
		LoginAt:            time.UnixMilli(snap.LoginTime),
		Minutes: MinuteBuckets{
			Operation:   snap.OperationMinutes,
			Break:       snap.BreakUsedMinutes,
			Meeting:     snap.MeetingMinutes,
			Handling:    snap.HandlingMinutes,
			Unavailable: snap.UnavailableMinutes,
		},
	}
}
