package repositories

import (
	"fmt"
	"strings"
)

// DefaultPageSize is used by callers that do not specify a page size.
const DefaultPageSize = 20

// Order is a single sort criterion.
type Order struct {
	Field string
	Desc  bool
}

// Sort is an ordered list of sort criteria. The zero value leaves ordering to the store.
type Sort []Order

// By returns an ascending Sort over fields.
func By(fields ...string) Sort {
	sort := make(Sort, 0, len(fields))
	for _, f := range fields {
		sort = append(sort, Order{Field: f})
	}
	return sort
}

// Desc returns a copy of s with every order reversed to descending.
func (s Sort) Desc() Sort {
	out := make(Sort, len(s))
	for i, o := range s {
		out[i] = Order{Field: o.Field, Desc: true}
	}
	return out
}

func (s Sort) String() string {
	parts := make([]string, 0, len(s))
	for _, o := range s {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		parts = append(parts, o.Field+","+dir)
	}
	return strings.Join(parts, ";")
}

// ParseSort parses specs of the form "field" or "field,asc|desc".
func ParseSort(specs ...string) (Sort, error) {
	var sort Sort
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		field, dir, _ := strings.Cut(spec, ",")
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("%w: empty sort field in %q", InvalidDataError, spec)
		}
		order := Order{Field: field}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			order.Desc = true
		default:
			return nil, fmt.Errorf("%w: unknown sort direction in %q", InvalidDataError, spec)
		}
		sort = append(sort, order)
	}
	return sort, nil
}

// Pageable requests the zero-based page Page of Size elements.
type Pageable struct {
	Page int
	Size int
	Sort Sort
}

// PageRequest is a shorthand for building a Pageable.
func PageRequest(page, size int, sort ...Order) Pageable {
	return Pageable{Page: page, Size: size, Sort: sort}
}

// Validate checks the page bounds.
func (p Pageable) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("%w: page must not be negative", InvalidDataError)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: page size must be greater than 0", InvalidDataError)
	}
	return nil
}

// Offset returns the number of records that precede the page.
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// Page is a bounded slice of a larger result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a Page for the given request out of its content and the overall total.
func NewPage[T any](content []T, pageable Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if pageable.Size > 0 {
		pages = int((total + int64(pageable.Size) - 1) / int64(pageable.Size))
	}
	return Page[T]{
		Content:       content,
		Number:        pageable.Page,
		Size:          pageable.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// Next returns the request for the following page.
func (p Page[T]) Next(sort Sort) Pageable {
	return Pageable{Page: p.Number + 1, Size: p.Size, Sort: sort}
}
