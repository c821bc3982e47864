package vectorstore

import (
	"animerec/internal/domain"
	"animerec/internal/embedding"
)

// Storage is an immutable nearest-neighbour index over item vectors.
type Storage interface {
	domain.Index
	// Search ranks every stored vector against an arbitrary query vector
	// and returns the first limit entries.
	Search(vector embedding.Vector, limit int) ([]domain.Neighbor, error)
}
