package session

import "sync"

// 会话注册表：userId → 活跃会话。
// 它同时扮演规格里“同设备本地缓存”的角色——页面重载时旧会话还活着，
// 直接原样续用，不产生任何时间缺口。
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Session)
)

// getSession 按userId查找活跃会话。
func getSession(userID string) *Session {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[userID]
}

// putSession 登记一个新会话。
func putSession(s *Session) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.UserID()] = s
}

// removeSession 注销一个会话；只有注册表里仍是这个实例时才移除，
// 避免登出请求误删一个刚刚顶替上来的新会话。
func removeSession(s *Session) {
	userID := s.UserID()
	registryMu.Lock()
	defer registryMu.Unlock()
	if registry[userID] == s {
		delete(registry, userID)
	}
}

// ActiveSessions 返回当前所有活跃会话的切片副本。
// Redis恢复后的重刷和停机前的最终刷写都靠它遍历。
func ActiveSessions() []*Session {
	registryMu.RLock()
	defer registryMu.RUnlock()
	sessions := make([]*Session, 0, len(registry))
	for _, s := range registry {
		sessions = append(sessions, s)
	}
	return sessions
}
