package notes

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage      = 1
	DefaultListLimit = 2
	DefaultSortLimit = 10
	MaxLimit         = 100
)

// Page is a 1-based page window.
type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page and limit query values. Anything missing, unparseable or
// below 1 falls back to the defaults; limit is capped at MaxLimit.
func ParsePage(rawPage, rawLimit string, defaultLimit int) Page {
	return NewPage(atoiOr(rawPage, DefaultPage), atoiOr(rawLimit, defaultLimit), defaultLimit)
}

func NewPage(page, limit, defaultLimit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// keeps (page-1)*limit within int
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}
