package metadata

import (
	"strings"

	"github.com/joseph-ayodele/papers-extractor/constants"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// MissingFields lists unmet fields in report order: title, authors, journal, year, abstract.
func MissingFields(m entity.Metadata) []string {
	missing := []string{}
	if strings.TrimSpace(m.Title) == "" {
		missing = append(missing, constants.FieldTitle)
	}
	if len(m.Authors) == 0 {
		missing = append(missing, constants.FieldAuthors)
	}
	if strings.TrimSpace(m.Journal) == "" {
		missing = append(missing, constants.FieldJournal)
	}
	if m.Year == nil {
		missing = append(missing, constants.FieldYear)
	}
	if strings.TrimSpace(m.Abstract) == "" {
		missing = append(missing, constants.FieldAbstract)
	}
	return missing
}

// DeriveMissing combines the oracle verdict with the structural check.
// An incomplete verdict with nothing structurally missing yields ["incomplete"].
func DeriveMissing(m entity.Metadata, complete bool) []string {
	missing := MissingFields(m)
	if !complete && len(missing) == 0 {
		return []string{constants.FieldIncomplete}
	}
	return missing
}

// IsCompleteVerdict reads the oracle reply: complete iff it starts with "complete".
func IsCompleteVerdict(reply string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "complete")
}
