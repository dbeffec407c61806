package daykey

import "time"

// Layout 是日键的固定格式。所有Redis键名和快照文档中的day字段都使用它。
const Layout = "2006-01-02"

// FromTime 根据给定时刻（按其自身时区）计算日键，格式为 YYYY-MM-DD。
func FromTime(t time.Time) string {
	return t.Format(Layout)
}

// Today 返回服务器本地时区下“今天”的日键。
func Today() string {
	return FromTime(time.Now())
}

// IsToday 判断一个日键是否属于now所在的日历日。
// 台账和快照都只对“今天”有效，过期的日键必须被视为陈旧数据。
func IsToday(key string, now time.Time) bool {
	return key == FromTime(now)
}

// Parse 将日键还原为当天零点的时刻（本地时区）。
// 归档清理时用它来比较日键的先后。
func Parse(key string) (time.Time, error) {
	return time.ParseInLocation(Layout, key, time.Local)
}
