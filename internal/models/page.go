package models

// PageRequest is a 1-based page with a page size
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta describes a page of a listing that knows its total
type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPageMeta builds the pagination envelope used by listing endpoints
func NewPageMeta(p PageRequest, total int64) PageMeta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PageMeta{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.Limit,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}
