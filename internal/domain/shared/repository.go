package shared

// Filter is the listing query every repository accepts. Filters carries
// equality conditions keyed by constants the domain packages export, such
// as catalog.FilterCategory or order.FilterStatus.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// Offset is the number of rows before Page; pages are 1-based
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a listing
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		size := int64(pageSize)
		p.TotalPages = int((total + size - 1) / size)
	}
	return p
}

func (p Paginated[T]) HasNext() bool { return p.Page < p.TotalPages }
func (p Paginated[T]) HasPrev() bool { return p.Page > 1 }
