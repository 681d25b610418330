package logging

// LogEntry represents a structured log record.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Engine-specific fields
	ModelID string // The reflection/curation model in use
	Latency int64  // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}
