package daykey

import (
	"testing"
	"time"
)

func TestFromTime(t *testing.T) {
	ts := time.Date(2025, 1, 2, 23, 59, 59, 0, time.Local)
	if got := FromTime(ts); got != "2025-01-02" {
		t.Errorf("FromTime = %q, 期望 2025-01-02", got)
	}
}

func TestIsToday(t *testing.T) {
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.Local)
	if !IsToday("2025-01-02", now) {
		t.Error("同一天的日键应被接受")
	}
	// 昨天的日键必须被判定为陈旧
	if IsToday("2025-01-01", now) {
		t.Error("过期日键不应被接受")
	}
}

func TestParseRoundTrip(t *testing.T) {
	day, err := Parse("2025-06-15")
	if err != nil {
		t.Fatalf("Parse 失败: %v", err)
	}
	if FromTime(day) != "2025-06-15" {
		t.Errorf("往返转换不一致: %s", FromTime(day))
	}
	if _, err := Parse("not-a-day"); err == nil {
		t.Error("非法日键应返回错误")
	}
}
