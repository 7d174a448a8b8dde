package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONObject means no {...} span could be found in a model reply.
var ErrNoJSONObject = errors.New("no json object in response")

var reTextField = regexp.MustCompile(`"text"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// StripCodeFences removes a leading ```lang line and a trailing ``` from a reply.
func StripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	// language tag, e.g. ```json
	if i := strings.IndexByte(t, '\n'); i >= 0 && !strings.ContainsAny(t[:i], "{[\"") {
		t = t[i+1:]
	}
	t = strings.TrimSpace(t)
	if i := strings.LastIndex(t, "```"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// ObjectSpan returns the text from the first '{' to the last '}' inclusive.
func ObjectSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// DecodeObject salvages a JSON object from free-form model output.
// Numbers are kept as json.Number so integer checks stay exact.
func DecodeObject(raw string) (map[string]any, error) {
	span, ok := ObjectSpan(StripCodeFences(raw))
	if !ok {
		return nil, ErrNoJSONObject
	}
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNoJSONObject
	}
	return m, nil
}

// QuotedTextField pulls the first "text": "..." value out of a broken JSON reply.
func QuotedTextField(s string) (string, bool) {
	m := reTextField.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &out); err != nil {
		return m[1], true
	}
	return out, true
}
