package domain

import "errors"

var (
	// ErrDataLoad reports an unreadable, malformed or empty catalog source.
	ErrDataLoad = errors.New("catalog load failed")
	// ErrNotFound reports a query title that is not in the catalog.
	ErrNotFound = errors.New("title not found")
	// ErrInvalidQuery reports a malformed index query (bad position or k).
	ErrInvalidQuery = errors.New("invalid query")
)

// Item is a single catalog title.
type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"genre"`
	Rating   float64 `json:"rating"`
	Members  int64   `json:"members"`
}

// Neighbor is one index hit: a catalog position and its cosine distance
// to the query vector.
type Neighbor struct {
	Position int
	Distance float64
}

// Recommendation pairs a recommended item with its distance to the query item.
type Recommendation struct {
	Item
	Distance float64 `json:"distance"`
}

// Result is the ordered answer to one recommendation query.
type Result struct {
	Query   string           `json:"query"`
	Results []Recommendation `json:"results"`
}

// Index answers exact nearest-neighbour queries over item vectors stored
// in catalog order.
type Index interface {
	Len() int
	// Query returns up to k+1 entries (k neighbours plus the item itself)
	// ordered by ascending distance, ties by stored position.
	Query(position, k int) ([]Neighbor, error)
}

// CatalogView is the read-only catalog surface the service and
// presentation layers depend on.
type CatalogView interface {
	Len() int
	At(position int) Item
	FindByName(name string) (Item, error)
	Position(name string) (int, bool)
	ByID(id int) (Item, int, bool)
	Categories() []string
	TopRated(n int) []Item
	MostPopular(n int) []Item
}
