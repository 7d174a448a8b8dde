package constants

// JobStatus is the outcome recorded for a processed document.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusRunning    JobStatus = "RUNNING"
	JobStatusComplete   JobStatus = "COMPLETE"   // metadata judged complete
	JobStatusIncomplete JobStatus = "INCOMPLETE" // finished with missing fields
	JobStatusFailed     JobStatus = "FAILED"     // terminal failure
)
