package listing

const (
	TherapistPageSize   = 8
	TransactionPageSize = 5
	AppointmentPageSize = 5
	// MaxVisiblePages bounds the page-number window shown by the pager.
	MaxVisiblePages = 5
)

// Page is one slice of a list plus the pager state around it.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int   `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	Window     []int `json:"window"`
}

// Paginate returns the requested 1-based page, clamping the page number into
// [1, totalPages]. An empty list yields a single empty page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = 1
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{
		Items:      out,
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
		Window:     PageWindow(page, pages, MaxVisiblePages),
	}
}

// PageWindow returns up to maxVisible consecutive page numbers centred on
// current where possible.
func PageWindow(current, totalPages, maxVisible int) []int {
	if totalPages <= 0 || maxVisible <= 0 {
		return []int{}
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	start := current - maxVisible/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisible - 1
	if end > totalPages {
		end = totalPages
		start = end - maxVisible + 1
		if start < 1 {
			start = 1
		}
	}
	window := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		window = append(window, i)
	}
	return window
}
