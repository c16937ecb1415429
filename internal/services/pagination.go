package services

import "strconv"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a 1-indexed page request.
type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page/limit query values. Missing or non-positive values
// fall back to page 1 and DefaultLimit; limit is capped at MaxLimit.
func ParsePage(page, limit string) Page {
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		p = 1
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l < 1 {
		l = DefaultLimit
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	return Page{Page: p, Limit: l}
}

func (p Page) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(p Page, total int64) Pagination {
	limit := int64(p.Limit)
	return Pagination{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}
}
