package metadata

// Metadata is a simple key-value table in SQLite used for small pieces of
// bookkeeping state that need to survive restarts.
type Metadata struct {
	Key   string `gorm:"primarykey;type:varchar(64)"`
	Value string
}
