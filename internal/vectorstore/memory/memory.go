package memory

import (
	"fmt"
	"sort"

	"animerec/internal/domain"
	"animerec/internal/embedding"
)

// Storage is an in-memory vector index using brute-force exact cosine distance.
// It is immutable after Build and safe for concurrent queries.
type Storage struct {
	vectors []embedding.Vector
	norms   []float64
}

// Build copies vectors into a new index. Position i in the index is
// position i in the slice.
func Build(vectors []embedding.Vector) *Storage {
	s := &Storage{
		vectors: make([]embedding.Vector, len(vectors)),
		norms:   make([]float64, len(vectors)),
	}
	for i, v := range vectors {
		s.vectors[i] = append(embedding.Vector(nil), v...)
		s.norms[i] = v.Norm()
	}
	return s
}

// Len returns the number of stored vectors.
func (s *Storage) Len() int { return len(s.vectors) }

// Query ranks every stored vector against the vector at position and
// returns up to k+1 entries, which leaves room for the self match.
func (s *Storage) Query(position, k int) ([]domain.Neighbor, error) {
	if position < 0 || position >= len(s.vectors) {
		return nil, fmt.Errorf("%w: position %d out of range [0,%d)", domain.ErrInvalidQuery, position, len(s.vectors))
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidQuery, k)
	}
	limit := len(s.vectors)
	if k < limit {
		limit = k + 1
	}
	return s.rank(s.vectors[position], s.norms[position], limit), nil
}

// Search ranks every stored vector against vector and returns the first
// limit entries.
func (s *Storage) Search(vector embedding.Vector, limit int) ([]domain.Neighbor, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1, got %d", domain.ErrInvalidQuery, limit)
	}
	return s.rank(vector, vector.Norm(), limit), nil
}

func (s *Storage) rank(q embedding.Vector, qnorm float64, limit int) []domain.Neighbor {
	all := make([]domain.Neighbor, len(s.vectors))
	for i, v := range s.vectors {
		all[i] = domain.Neighbor{Position: i, Distance: embedding.CosineDistance(q, qnorm, v, s.norms[i])}
	}
	// Stable sort keeps catalog order among equal distances.
	sort.SliceStable(all, func(i, j int) bool { return all[i].Distance < all[j].Distance })
	if limit > len(all) {
		limit = len(all)
	}
	return all[:limit:limit]
}
