package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"unicode/utf8"

	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// DefaultPreviewLen bounds raw response previews kept for diagnosis.
const DefaultPreviewLen = 512

// StatusError is a non-2xx reply from an inference backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, Preview(e.Body, 200))
}

// DecodeError means the backend replied 2xx but the envelope could not be decoded.
type DecodeError struct {
	Err error
	Raw string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Classify maps a backend error onto a page error category.
func Classify(err error) entity.PageErrorCategory {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.PageErrorTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return entity.PageErrorTimeout
	}
	var se *StatusError
	if errors.As(err, &se) {
		return entity.PageErrorUpstreamStatus
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return entity.PageErrorJSONDecode
	}
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	if errors.As(err, &syn) || errors.As(err, &typ) {
		return entity.PageErrorJSONDecode
	}
	return entity.PageErrorOther
}

// RawPreview returns a bounded preview of the raw reply attached to err, if any.
func RawPreview(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return Preview(se.Body, DefaultPreviewLen)
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return Preview(de.Raw, DefaultPreviewLen)
	}
	return ""
}

// Preview truncates s to at most n bytes without splitting a rune.
func Preview(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
