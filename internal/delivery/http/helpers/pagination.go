package helpers

import (
	"net/http"
	"strconv"

	"blueelephant/internal/domain"
)

// List views page over the store's ordered mirror.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationMeta describes the window a Page holds.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
}

// Page is one window of a board list view.
type Page[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// PageParams reads page and pageSize from the query string. page_size is
// accepted as an alias. Unusable values fall back to the defaults and the
// size is capped at MaxPageSize.
func PageParams(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	size := q.Get("pageSize")
	if size == "" {
		size = q.Get("page_size")
	}
	return domain.PaginationParams{
		Page:     positiveInt(q.Get("page"), 1),
		PageSize: min(positiveInt(size, DefaultPageSize), MaxPageSize),
	}
}

// PageOf cuts the window requested by r out of items.
func PageOf[T any](r *http.Request, items []T) Page[T] {
	p := PageParams(r)
	total := len(items)
	totalPages := (total + p.PageSize - 1) / p.PageSize
	return Page[T]{
		Items: domain.Paginate(items, p),
		Pagination: PaginationMeta{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    p.Page < totalPages,
		},
	}
}

func positiveInt(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 1 {
		return v
	}
	return def
}
