package agent

// 定义与坐席名录相关的Redis键名
const (
	// KnownAgentsKey 是一个Set，用于快速判断一个userId是否是名录中的合法坐席。
	// Key: known_agents
	// Member: 坐席的username
	KnownAgentsKey = "known_agents"
)
