// Package pagination splits ordered listings into numbered pages.
package pagination

import (
	"context"
	"strconv"
)

// Source is an ordered listing that can be counted and sliced.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Slice(ctx context.Context, limit, offset int) ([]T, error)
}

// Paginator describes how a listing splits into pages.
type Paginator struct {
	PerPage  int   `json:"per_page"`
	Count    int64 `json:"count"`
	NumPages int   `json:"num_pages"`
}

// NewPaginator builds a Paginator. An empty listing still has one page.
func NewPaginator(count int64, perPage int) Paginator {
	if perPage < 1 {
		perPage = 1
	}
	pages := int((count + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return Paginator{PerPage: perPage, Count: count, NumPages: pages}
}

// PageRange lists the page numbers 1..NumPages.
func (p Paginator) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// Normalize resolves a raw ?page= value: anything that is not an integer
// gives page 1, and anything out of range gives the last page.
func (p Paginator) Normalize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if n < 1 || n > p.NumPages {
		return p.NumPages
	}
	return n
}

// Page is one slice of a listing.
type Page[T any] struct {
	Number    int       `json:"number"`
	Items     []T       `json:"items"`
	Paginator Paginator `json:"-"`
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool { return p.Number < p.Paginator.NumPages }

// HasPrevious reports whether an earlier page exists.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasOtherPages reports whether the listing spans more than one page.
func (p *Page[T]) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

// NextPageNumber is Number+1; only meaningful when HasNext.
func (p *Page[T]) NextPageNumber() int { return p.Number + 1 }

// PreviousPageNumber is Number-1; only meaningful when HasPrevious.
func (p *Page[T]) PreviousPageNumber() int { return p.Number - 1 }

// Get loads the page named by raw from src.
func Get[T any](ctx context.Context, src Source[T], perPage int, raw string) (*Page[T], error) {
	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}
	paginator := NewPaginator(count, perPage)
	number := paginator.Normalize(raw)

	items, err := src.Slice(ctx, paginator.PerPage, (number-1)*paginator.PerPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Number: number, Items: items, Paginator: paginator}, nil
}
