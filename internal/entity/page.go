package entity

// PageErrorCategory tags why a page could not be extracted.
type PageErrorCategory string

const (
	PageErrorTimeout        PageErrorCategory = "timeout"
	PageErrorUpstreamStatus PageErrorCategory = "upstream_status"
	PageErrorJSONDecode     PageErrorCategory = "json_decode"
	PageErrorOther          PageErrorCategory = "other"
)

// ParseMode records how the page payload was recovered from the model output.
type ParseMode string

const (
	ParseModeJSON       ParseMode = "json"
	ParseModeCoerced    ParseMode = "coerced" // decoded object that misses the page schema
	ParseModeQuotedText ParseMode = "quoted_text"
	ParseModeRawText    ParseMode = "raw_text"
)

// Table is a single table found on a page.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// PageError is the error form of a page result.
type PageError struct {
	Category   PageErrorCategory `json:"category"`
	Message    string            `json:"message"`
	RawPreview string            `json:"raw_preview,omitempty"`
}

// PageResult is the extraction output for one page (1-based index).
type PageResult struct {
	Page   int        `json:"page"`
	Text   string     `json:"text"`
	Tables []Table    `json:"tables"`
	Images []string   `json:"images"`
	Parse  ParseMode  `json:"parse,omitempty"`
	Error  *PageError `json:"error,omitempty"`
}

// Failed reports whether the page carries an error record.
func (p PageResult) Failed() bool {
	return p.Error != nil
}
