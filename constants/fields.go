package constants

// Field names for bibliographic metadata, in the order missing fields are reported.
const (
	FieldTitle    = "title"
	FieldAuthors  = "authors"
	FieldJournal  = "journal"
	FieldYear     = "year"
	FieldAbstract = "abstract"
)

// FieldIncomplete is reported when the completeness check fails but every field is present.
const FieldIncomplete = "incomplete"
