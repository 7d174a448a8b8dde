// Package metadata holds the bibliographic field rules shared by the pipeline:
// normalization of model output, the merge policy across retries and
// missing-field derivation.
package metadata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/papers-extractor/constants"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// NormalizeRaw coerces a decoded model object into typed metadata.
// A nil map yields empty metadata.
func NormalizeRaw(raw map[string]any) entity.Metadata {
	return Normalize(entity.Metadata{
		Title:    scalarString(raw[constants.FieldTitle]),
		Authors:  authorList(raw[constants.FieldAuthors]),
		Journal:  scalarString(raw[constants.FieldJournal]),
		Year:     yearValue(raw[constants.FieldYear]),
		Abstract: scalarString(raw[constants.FieldAbstract]),
	})
}

// Normalize trims string fields and author entries and never returns nil authors.
func Normalize(m entity.Metadata) entity.Metadata {
	out := entity.Metadata{
		Title:    strings.TrimSpace(m.Title),
		Journal:  strings.TrimSpace(m.Journal),
		Abstract: strings.TrimSpace(m.Abstract),
		Authors:  make([]string, 0, len(m.Authors)),
	}
	for _, a := range m.Authors {
		if a = strings.TrimSpace(a); a != "" {
			out.Authors = append(out.Authors, a)
		}
	}
	if m.Year != nil {
		y := *m.Year
		out.Year = &y
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if !t {
			return ""
		}
		return "true"
	default:
		// nil, arrays and objects carry no usable text
		return ""
	}
}

// authorList accepts a list or a comma-joined string; anything else is empty.
func authorList(v any) []string {
	switch t := v.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch a := item.(type) {
			case string:
				out = append(out, a)
			case map[string]any:
				// some models return [{"name": "..."}]
				if name, ok := a["name"].(string); ok {
					out = append(out, name)
				}
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}

// yearValue returns an int only for digit-only input.
func yearValue(v any) *int {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	case int:
		return entity.IntPtr(t)
	case float64:
		if t == math.Trunc(t) && t >= 0 && t < math.MaxInt32 {
			return entity.IntPtr(int(t))
		}
		return nil
	default:
		return nil
	}
	if !isDigits(s) {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
