package domain

import "time"

// PublishRun records one mirror of the output directory to a bucket.
type PublishRun struct {
	ID        string
	BuildID   string
	StartedAt time.Time
	Target    string
	Uploaded  int
	Deleted   int
	Unchanged int
	Error     string
}
