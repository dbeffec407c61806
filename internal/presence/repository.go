package presence

// --- Redis 键名 ---
// 快照相关的键全部按日键分片：前一天的数据自然沉底，
// 由归档器集中转入SQLite后删除。

const (
	// snapshotKeyPrefix 是一个 Redis Hash 的键前缀，存储当天所有坐席的快照。
	// Key: status:snapshot:{day}
	// Field: 坐席的userId
	// Value: status.Snapshot 的JSON序列化字符串
	snapshotKeyPrefix = "status:snapshot:"

	// activeKeyPrefix 是一个 Redis Sorted Set 的键前缀，按最近刷写时间排序坐席。
	// Score: 快照的updatedAt (epoch ms)
	// Member: 坐席的userId
	activeKeyPrefix = "status:active:"

	// dirtyKeyPrefix 是一个 Redis Set 的键前缀，记录自上次归档以来
	// 快照发生过刷写的坐席，供归档器做增量归档。
	dirtyKeyPrefix = "status:dirty:"

	// ProcessingDirtySuffix 是归档器消费脏集合时使用的临时键后缀。
	ProcessingDirtySuffix = ":processing"
)

// SnapshotKey 返回指定日键的快照Hash键名。
func SnapshotKey(day string) string {
	return snapshotKeyPrefix + day
}

// ActiveKey 返回指定日键的活跃排序集键名。
func ActiveKey(day string) string {
	return activeKeyPrefix + day
}

// DirtyKey 返回指定日键的脏集合键名。
func DirtyKey(day string) string {
	return dirtyKeyPrefix + day
}
