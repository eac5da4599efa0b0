package view

import "errors"

// ErrInvalidPage is returned for a page or size below 1.
var ErrInvalidPage = errors.New("page and size must be >= 1")

// Page is one slice of the table rows.
type Page struct {
	Rows       []TableRow `json:"rows"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// Paginate returns rows[(page-1)*size : page*size]. A page past the end is
// empty, not an error.
func Paginate(rows []TableRow, page, size int) (Page, error) {
	if page < 1 || size < 1 {
		return Page{}, ErrInvalidPage
	}
	total := len(rows)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	out := Page{
		Rows:       []TableRow{},
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: pages,
	}
	// Compare page numbers before multiplying so huge inputs cannot wrap.
	if page > pages {
		return out, nil
	}
	start := (page - 1) * size
	end := total
	if size < total-start {
		end = start + size
	}
	out.Rows = append(out.Rows, rows[start:end]...)
	return out, nil
}
