package ocr

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/papers-extractor/internal/entity"
	"github.com/joseph-ayodele/papers-extractor/internal/llm"
)

var pageSchema = llm.MustCompileSchema(llm.PageJSONSchema())

// Content is the structured payload recovered from one vision reply.
type Content struct {
	Text   string
	Tables []entity.Table
	Images []string
	Mode   entity.ParseMode
}

// ParseContent turns a raw vision reply into page content. It never fails.
// An object matching the page schema is used as is. An object that misses the
// schema keeps its decoded tables and images, and its text falls back to the
// first quoted "text" value, then to the whole trimmed body.
func ParseContent(raw string) Content {
	if obj, err := llm.DecodeObject(raw); err == nil {
		c := Content{
			Tables: asTables(obj["tables"]),
			Images: asStrings(obj["images"]),
			Mode:   entity.ParseModeJSON,
		}
		if llm.ValidateObject(pageSchema, map[string]any(obj)) == nil {
			c.Text = asString(obj["text"])
			return c
		}
		c.Mode = entity.ParseModeCoerced
		if text, ok := obj["text"].(string); ok {
			c.Text = text
		} else {
			c.Text, _ = fallbackText(raw)
		}
		return c
	}
	text, mode := fallbackText(raw)
	return Content{
		Text:   text,
		Tables: []entity.Table{},
		Images: []string{},
		Mode:   mode,
	}
}

func fallbackText(raw string) (string, entity.ParseMode) {
	if text, ok := llm.QuotedTextField(raw); ok {
		return text, entity.ParseModeQuotedText
	}
	return strings.TrimSpace(raw), entity.ParseModeRawText
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// asStrings keeps non-empty entries; a lone string becomes a one-element list.
func asStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// asCells keeps every entry, empty cells included, so columns stay aligned.
func asCells(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item))
	}
	return out
}

func asTables(v any) []entity.Table {
	out := []entity.Table{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		t := entity.Table{Headers: asCells(m["headers"]), Rows: [][]string{}}
		if rows, ok := m["rows"].([]any); ok {
			for _, r := range rows {
				t.Rows = append(t.Rows, asCells(r))
			}
		}
		out = append(out, t)
	}
	return out
}
