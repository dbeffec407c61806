package metadata

// Keys used in the metadata table.
const (
	// LastArchiveTimeKey stores the epoch-ms timestamp of the last successful
	// snapshot archive run.
	LastArchiveTimeKey = "last_archive_time"

	// LastPurgeDayKey stores the day key up to which old archives have been
	// purged by the retention job.
	LastPurgeDayKey = "last_purge_day"
)
