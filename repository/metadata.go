package repository

// Per-entity query metadata. Each persisted type declares which columns a
// caller may sort or search on; anything else is rejected up front so
// internal columns are never exposed by accident.

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// MatchKind selects the comparison applied to a searchable field.
type MatchKind string

const (
	// MatchSubstring is a case-insensitive LIKE '%value%'.
	MatchSubstring MatchKind = "substring"
	// MatchEquals is an exact equality comparison.
	MatchEquals MatchKind = "equals"
)

type SortableField struct {
	Name      string
	IsDefault bool
}

type SearchableField struct {
	Name  string
	Match MatchKind
}

// SortOption is one caller-supplied (field, direction) pair. An empty
// Direction means ascending.
type SortOption struct {
	Field     string
	Direction SortDirection
}

// SearchOption is one caller-supplied (field, value) pair.
type SearchOption struct {
	Field string
	Value string
}

// PagingOptions bounds a query to a window of results.
// Limit 0 means "use the default page size".
type PagingOptions struct {
	Offset int
	Limit  int
}

// Queryable is implemented once per entity type. It feeds the query
// composer; no reflection is involved.
type Queryable interface {
	SortableFields() []SortableField
	SearchableFields() []SearchableField

	// NameColumn is the entity's canonical name column for GetAllByName.
	// Empty when the entity has no name field.
	NameColumn() string
}
