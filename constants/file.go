package constants

import "strings"

// SupportedPDFContentTypes holds the declared content types accepted for documents.
var SupportedPDFContentTypes = map[string]struct{}{
	"application/pdf":      {},
	"application/x-pdf":    {},
	"application/acrobat":  {},
	"applications/vnd.pdf": {},
	"text/pdf":             {},
	"text/x-pdf":           {},
}

// AllowedExtensions holds the file extensions picked up by directory ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSupportedPDFContentType reports whether a declared content type names a PDF.
// Parameters such as "; charset=binary" are ignored.
func IsSupportedPDFContentType(ct string) bool {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	_, ok := SupportedPDFContentTypes[strings.ToLower(strings.TrimSpace(ct))]
	return ok
}
