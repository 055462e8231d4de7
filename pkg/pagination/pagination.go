package pagination

// MaxPageSize bounds a single page
const MaxPageSize = 500

// Params selects one page. A PageSize of 0 selects everything.
type Params struct {
	Page     int
	PageSize int
}

func (p Params) offsetLimit() (offset, limit int) {
	if p.PageSize <= 0 {
		return 0, 0
	}
	page := max(p.Page, 1)
	return (page - 1) * p.PageSize, p.PageSize
}

// Meta describes the page returned alongside the items
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Apply returns the page of items p selects together with its metadata
func Apply[T any](p Params, items []T) ([]T, Meta) {
	meta := Meta{
		Page:       max(p.Page, 1),
		PageSize:   p.PageSize,
		TotalItems: len(items),
	}

	offset, limit := p.offsetLimit()
	if limit == 0 {
		if len(items) > 0 {
			meta.TotalPages = 1
		}
		return items, meta
	}

	meta.TotalPages = (len(items) + limit - 1) / limit
	if offset >= len(items) {
		return []T{}, meta
	}
	return items[offset:min(offset+limit, len(items))], meta
}
