package llm

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageMimeType returns the declared mime type, or sniffs it from the bytes.
func ImageMimeType(declared string, data []byte) string {
	if m := strings.TrimSpace(declared); m != "" {
		return m
	}
	if len(data) == 0 {
		return "image/png"
	}
	m := mimetype.Detect(data).String()
	if !strings.HasPrefix(m, "image/") {
		return "image/png"
	}
	return m
}

// DataURL builds a base64 data URL suitable for OpenAI-style image_url parts.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
