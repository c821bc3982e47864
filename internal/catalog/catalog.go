// Package catalog loads the item catalog and serves lookups over it.
//
// A Catalog is immutable once built. Identifiers are unique: an item
// repeating an earlier item's ID is dropped. Display names are expected to
// be unique too; when the source repeats a name the first occurrence wins
// and later items with that name are reachable only by position or ID.
//
// Names are stored exactly as read, surrounding spaces included, and
// lookups match that stored string.
package catalog

import (
	"fmt"
	"sort"

	"animerec/internal/domain"
)

// Catalog is an ordered, read-only sequence of items.
type Catalog struct {
	items      []domain.Item
	byName     map[string]int
	byID       map[int]int
	shadowed   int
	duplicates int
}

// New builds a catalog from items in source order. Items are copied;
// items whose ID was already seen are skipped.
func New(items []domain.Item) *Catalog {
	c := &Catalog{
		items:  make([]domain.Item, 0, len(items)),
		byName: make(map[string]int, len(items)),
		byID:   make(map[int]int, len(items)),
	}
	for _, it := range items {
		if _, ok := c.byID[it.ID]; ok {
			c.duplicates++
			continue
		}
		c.byID[it.ID] = len(c.items)
		if _, ok := c.byName[it.Name]; ok {
			c.shadowed++
		} else {
			c.byName[it.Name] = len(c.items)
		}
		c.items = append(c.items, it)
	}
	return c
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// At returns the item at position i.
func (c *Catalog) At(i int) domain.Item { return c.items[i] }

// DuplicateIDs reports how many input items were dropped for repeating an ID.
func (c *Catalog) DuplicateIDs() int { return c.duplicates }

// Shadowed reports how many items share a name with an earlier item.
func (c *Catalog) Shadowed() int { return c.shadowed }

// FindByName returns the first item whose name equals name exactly.
func (c *Catalog) FindByName(name string) (domain.Item, error) {
	i, ok := c.byName[name]
	if !ok {
		return domain.Item{}, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	return c.items[i], nil
}

// Position returns the catalog position of the first item named name.
func (c *Catalog) Position(name string) (int, bool) {
	i, ok := c.byName[name]
	return i, ok
}

// ByID returns the item with the given identifier and its position.
func (c *Catalog) ByID(id int) (domain.Item, int, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Item{}, -1, false
	}
	return c.items[i], i, true
}

// Categories returns every item's category text in catalog order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.items))
	for i, it := range c.items {
		out[i] = it.Category
	}
	return out
}

// TopRated returns up to n items by descending rating, ties in catalog order.
func (c *Catalog) TopRated(n int) []domain.Item {
	return c.top(n, func(a, b domain.Item) bool { return a.Rating > b.Rating })
}

// MostPopular returns up to n items by descending member count, ties in catalog order.
func (c *Catalog) MostPopular(n int) []domain.Item {
	return c.top(n, func(a, b domain.Item) bool { return a.Members > b.Members })
}

func (c *Catalog) top(n int, better func(a, b domain.Item) bool) []domain.Item {
	if n <= 0 {
		return nil
	}
	sorted := append([]domain.Item(nil), c.items...)
	sort.SliceStable(sorted, func(i, j int) bool { return better(sorted[i], sorted[j]) })
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
