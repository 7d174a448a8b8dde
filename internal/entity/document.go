package entity

import "github.com/google/uuid"

// DocumentJob is one unit of work for the extraction pipeline. It is never persisted.
type DocumentJob struct {
	ID          uuid.UUID
	Source      string   // file path or upload name, informational only
	Pages       [][]byte // rendered page images in document order
	Instruction string
	Attempts    int // metadata passes already spent on this job
	MaxAttempts int // total metadata passes allowed; 0 uses the processor default
}
