package entity

import "github.com/google/uuid"

// Result is the bundle returned by a pipeline run.
type Result struct {
	RunID         uuid.UUID    `json:"run_id"`
	Source        string       `json:"source,omitempty"`
	Pages         []PageResult `json:"pages"`
	PageCount     int          `json:"page_count"`
	OCRText       string       `json:"ocr_text"`
	Metadata      Metadata     `json:"metadata"`
	RawMetadata   string       `json:"raw_metadata,omitempty"`
	MissingFields []string     `json:"missing_fields"`
	Complete      bool         `json:"complete"`
	Attempts      int          `json:"attempts"`
	Embedding     []float32    `json:"embedding,omitempty"`
}

// FailedPages counts pages that carry an error record.
func (r *Result) FailedPages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Failed() {
			n++
		}
	}
	return n
}
