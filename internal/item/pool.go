package item

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPool = errors.New("invalid item pool")

// Pool partitions a banner's items by rating. Featured 5* items are kept
// apart from the standard 5* pool that is drawn on a lost 50/50.
type Pool struct {
	byRating map[Rating][]Item
	featured []Item
	standard []Item
	byName   map[string]Item
}

// NewPool builds a pool and checks that every rating has at least one item.
// Problems are collected and reported together.
func NewPool(items []Item) (*Pool, error) {
	p := &Pool{
		byRating: make(map[Rating][]Item, len(Ratings)),
		byName:   make(map[string]Item, len(items)),
	}
	var errs []string
	for i, it := range items {
		if it.Name == "" {
			errs = append(errs, fmt.Sprintf("items[%d]: name is required", i))
			continue
		}
		if !it.Rating.Valid() {
			errs = append(errs, fmt.Sprintf("items[%d] %q: rating must be 3, 4 or 5", i, it.Name))
			continue
		}
		if it.Featured && it.Rating != FiveStar {
			errs = append(errs, fmt.Sprintf("items[%d] %q: only 5* items can be featured", i, it.Name))
			continue
		}
		if _, dup := p.byName[it.Name]; dup {
			errs = append(errs, fmt.Sprintf("items[%d] %q: duplicate name", i, it.Name))
			continue
		}
		p.byName[it.Name] = it
		p.byRating[it.Rating] = append(p.byRating[it.Rating], it)
		if it.Rating == FiveStar {
			if it.Featured {
				p.featured = append(p.featured, it)
			} else {
				p.standard = append(p.standard, it)
			}
		}
	}
	for _, r := range Ratings {
		if len(p.byRating[r]) == 0 {
			errs = append(errs, fmt.Sprintf("no %s items", r))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPool, strings.Join(errs, "; "))
	}
	return p, nil
}

// Of returns the items of one rating. The slice must not be modified.
func (p *Pool) Of(r Rating) []Item { return p.byRating[r] }

// Featured returns the rate-up 5* items.
func (p *Pool) Featured() []Item { return p.featured }

// Standard returns the non-featured 5* items.
func (p *Pool) Standard() []Item { return p.standard }

// Lookup finds an item by name.
func (p *Pool) Lookup(name string) (Item, bool) {
	it, ok := p.byName[name]
	return it, ok
}

// Len is the number of distinct items in the pool.
func (p *Pool) Len() int { return len(p.byName) }
