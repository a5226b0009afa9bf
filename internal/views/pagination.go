package views

// windowSize is the number of page links shown at once
const windowSize = 5

// Pagination is what the list templates need to render page links
type Pagination struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
	Pages      []int
}

// NewPagination builds the pager for page of total items with limit per page
func NewPagination(page, limit, total int) Pagination {
	totalPages := TotalPages(total, limit)
	return Pagination{
		Page:       page,
		PageSize:   limit,
		TotalItems: total,
		TotalPages: totalPages,
		Pages:      PageWindow(page, totalPages),
	}
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }
func (p Pagination) Prev() int     { return p.Page - 1 }
func (p Pagination) Next() int     { return p.Page + 1 }

// Visible reports whether there is more than one page to choose from
func (p Pagination) Visible() bool { return p.TotalPages > 1 }

// TotalPages is ceil(total / limit)
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// PageWindow returns up to five page numbers around current, kept inside [1, totalPages].
// Near the start it shows 1..5, near the end the last five pages.
func PageWindow(current, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	current = min(max(current, 1), totalPages)
	n := min(windowSize, totalPages)

	var start int
	switch {
	case current <= 3:
		start = 1
	case current >= totalPages-2:
		start = totalPages - windowSize + 1
	default:
		start = current - 2
	}
	start = min(max(start, 1), totalPages-n+1)

	pages := make([]int, n)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
