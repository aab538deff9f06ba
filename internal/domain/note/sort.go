package note

import "strings"

type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortUpdatedAt SortKey = "updated_at"
	SortTitle     SortKey = "title"
)

// ParseSortKey never fails: anything outside the whitelist is the default order.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.TrimSpace(raw)) {
	case SortUpdatedAt:
		return SortUpdatedAt
	case SortTitle:
		return SortTitle
	default:
		return SortCreatedAt
	}
}

// Less reports whether a sorts before b under key. Ties break on id so the order is total.
func (k SortKey) Less(a, b Note) bool {
	switch k {
	case SortTitle:
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	case SortUpdatedAt:
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
}
