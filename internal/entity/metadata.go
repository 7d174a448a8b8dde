package entity

// Metadata is the bibliographic summary extracted from a document.
// Year is nil when unknown; a zero year is a real value.
type Metadata struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Journal  string   `json:"journal"`
	Year     *int     `json:"year"`
	Abstract string   `json:"abstract"`
}

// HasYear reports whether a year was extracted.
func (m Metadata) HasYear() bool {
	return m.Year != nil
}

// YearValue returns the year or 0 when absent.
func (m Metadata) YearValue() int {
	if m.Year == nil {
		return 0
	}
	return *m.Year
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Authors != nil {
		out.Authors = append([]string(nil), m.Authors...)
	}
	if m.Year != nil {
		y := *m.Year
		out.Year = &y
	}
	return out
}

// IntPtr is a small helper for building metadata literals.
func IntPtr(v int) *int {
	return &v
}
