package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/papers-extractor/constants"
)

// AllowedExt checks if a file extension is in exts, or constants.AllowedExtensions when exts is nil.
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// ExtSet builds a lookup set from user supplied extensions such as ".PDF" or "pdf".
// An empty list yields nil, meaning the default set.
func ExtSet(list []string) map[string]struct{} {
	var out map[string]struct{}
	for _, e := range list {
		e = constants.NormalizeExt(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if out == nil {
			out = map[string]struct{}{}
		}
		out[e] = struct{}{}
	}
	return out
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
