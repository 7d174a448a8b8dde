package metadata

import (
	"unicode/utf8"

	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// Merge folds incoming into base and returns normalized metadata.
//   - title, journal: replaced only by a non-empty value
//   - authors: replaced wholesale by a non-empty list
//   - year: replaced only by a known year
//   - abstract: replaced by a non-empty value at least as long as the current one
func Merge(base, incoming entity.Metadata) entity.Metadata {
	out := Normalize(base)
	in := Normalize(incoming)

	if in.Title != "" {
		out.Title = in.Title
	}
	if in.Journal != "" {
		out.Journal = in.Journal
	}
	if len(in.Authors) > 0 {
		out.Authors = in.Authors
	}
	if in.Year != nil {
		out.Year = in.Year
	}
	if in.Abstract != "" && utf8.RuneCountInString(in.Abstract) >= utf8.RuneCountInString(out.Abstract) {
		out.Abstract = in.Abstract
	}
	return Normalize(out)
}
