package query

// Page describes a slice of a larger result.
type Page struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Paginate returns items[offset:offset+limit], clamped to the slice.
// A non-positive limit returns everything from offset.
func Paginate[T any](items []T, offset, limit int) ([]T, Page) {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	return items[offset:end], Page{Total: total, Offset: offset, Limit: limit}
}
