// Package pagination computes the page-group window used to browse listings.
// It is a pure computation over (page, page size, total count) and performs
// no I/O.
package pagination

import "errors"

// GroupSize is the number of consecutive page buttons shown together.
const GroupSize = 10

// ErrInvalidPageSize is returned when the requested page size is not positive.
var ErrInvalidPageSize = errors.New("page size must be positive")

// Window describes the pager state for one listing request
type Window struct {
	CurrentPage   int  `json:"current_page"`
	TotalPages    int  `json:"total_pages"`
	TotalItems    int64 `json:"total_items"`
	StartPage     int  `json:"start_page"`
	EndPage       int  `json:"end_page"`
	HasPrevGroup  bool `json:"has_prev_group"`
	PrevGroupPage int  `json:"prev_group_page"`
	HasNextGroup  bool `json:"has_next_group"`
	NextGroupPage int  `json:"next_group_page"`
}

// NewWindow computes the window for a 1-based page over totalItems entries.
// Pages beyond the last one still yield a well-defined window; the caller
// gets an empty item slice from the repository in that case.
func NewWindow(page, pageSize int, totalItems int64) (Window, error) {
	if pageSize <= 0 {
		return Window{}, ErrInvalidPageSize
	}
	if page < 1 {
		page = 1
	}

	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))

	currentGroup := (page - 1) / GroupSize
	startPage := currentGroup*GroupSize + 1
	endPage := startPage + GroupSize - 1
	if endPage > totalPages {
		endPage = totalPages
	}

	w := Window{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		StartPage:    startPage,
		EndPage:      endPage,
		HasPrevGroup: startPage > 1,
		HasNextGroup: endPage < totalPages,
	}
	if w.HasPrevGroup {
		w.PrevGroupPage = startPage - 1
	}
	if w.HasNextGroup {
		w.NextGroupPage = endPage + 1
	}
	return w, nil
}

// Offset converts a validated 1-based page into the 0-based row offset used
// by the repository.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
