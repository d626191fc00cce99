package service

const (
	// Dashboard
	ChartWeeks          = 12
	RecentSessionsLimit = 10

	// Session list paging
	DefaultPageSize = 50

	// Comparison windows
	Rolling30Days = 30

	// Detail charts are downsampled to at most this many points
	MaxChartPoints = 120

	// Streams fetched per sync; the rest wait for the next run
	SyncStreamBatch = 50
)
