package model

// DataSource tags every successful result with where its data came from.
type DataSource string

const (
	SourceLive     DataSource = "live"     // returned by the backend
	SourceFallback DataSource = "fallback" // synthesized client-side
)

// IsFallback reports whether the data was synthesized.
func (s DataSource) IsFallback() bool { return s == SourceFallback }
