package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"animerec/internal/domain"
	"animerec/internal/embedding"
	"animerec/internal/summarizer"
	"animerec/internal/vectorstore"
	"animerec/internal/vectorstore/memory"
)

// DefaultK is the neighbour count used when a caller passes k == 0.
const DefaultK = 5

// Snapshot is one fully built, immutable catalog + index pair.
type Snapshot struct {
	Catalog domain.CatalogView
	Model   embedding.Model
	Index   vectorstore.Storage
	Summary string
	BuiltAt time.Time
}

// BuildSnapshot fits vectorizer over every item's category text and
// indexes the resulting vectors in catalog order.
func BuildSnapshot(cat domain.CatalogView, vectorizer embedding.Vectorizer, logger zerolog.Logger) (*Snapshot, error) {
	start := time.Now()
	categories := cat.Categories()
	model, err := vectorizer.Fit(categories)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", vectorizer.Name(), err)
	}
	vectors := model.Vectors()
	if len(vectors) != cat.Len() {
		return nil, fmt.Errorf("vectorizer returned %d vectors for %d items", len(vectors), cat.Len())
	}
	zero := 0
	for _, v := range vectors {
		if len(v) == 0 {
			zero++
		}
	}
	snap := &Snapshot{
		Catalog: cat,
		Model:   model,
		Index:   memory.Build(vectors),
		Summary: summarizer.NewGenreSummarizer().Summarize(categories, 5),
		BuiltAt: time.Now(),
	}
	logger.Info().
		Str("vectorizer", vectorizer.Name()).
		Int("items", cat.Len()).
		Int("vocabulary", model.Dimension()).
		Int("zero_vectors", zero).
		Dur("took", time.Since(start)).
		Msg("similarity index built")
	return snap, nil
}

// RecommendService answers recommendation queries against the current
// snapshot. It keeps no per-query state and is safe for concurrent use.
type RecommendService struct {
	current  atomic.Pointer[Snapshot]
	defaultK int
	logger   zerolog.Logger
}

// NewRecommendService serves snap. defaultK <= 0 falls back to DefaultK.
func NewRecommendService(snap *Snapshot, defaultK int, logger zerolog.Logger) *RecommendService {
	if defaultK <= 0 {
		defaultK = DefaultK
	}
	s := &RecommendService{defaultK: defaultK, logger: logger}
	s.current.Store(snap)
	return s
}

// Snapshot returns the snapshot currently being served.
func (s *RecommendService) Snapshot() *Snapshot { return s.current.Load() }

// Swap publishes a new snapshot. Queries already running finish against
// the snapshot they started with.
func (s *RecommendService) Swap(snap *Snapshot) *Snapshot {
	old := s.current.Swap(snap)
	ev := s.logger.Info().Int("items", snap.Catalog.Len()).Time("built_at", snap.BuiltAt)
	if old != nil {
		ev = ev.Time("replaced_built_at", old.BuiltAt)
	}
	ev.Msg("snapshot swapped")
	return old
}

// Recommend returns the k items most similar to the item named name,
// excluding that item. k == 0 uses the service default.
func (s *RecommendService) Recommend(name string, k int) (domain.Result, error) {
	k, err := s.resolveK(k)
	if err != nil {
		return domain.Result{}, err
	}
	snap := s.Snapshot()
	item, err := snap.Catalog.FindByName(name)
	if err != nil {
		return domain.Result{}, err
	}
	pos, _ := snap.Catalog.Position(name)
	return s.recommend(snap, name, item, pos, k)
}

// RecommendByID is Recommend keyed by item identifier. It reaches items
// whose name is shadowed by an earlier item.
func (s *RecommendService) RecommendByID(id, k int) (domain.Result, error) {
	k, err := s.resolveK(k)
	if err != nil {
		return domain.Result{}, err
	}
	snap := s.Snapshot()
	item, pos, ok := snap.Catalog.ByID(id)
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return s.recommend(snap, item.Name, item, pos, k)
}

func (s *RecommendService) resolveK(k int) (int, error) {
	if k < 0 {
		return 0, fmt.Errorf("%w: k must not be negative, got %d", domain.ErrInvalidQuery, k)
	}
	if k == 0 {
		return s.defaultK, nil
	}
	return k, nil
}

func (s *RecommendService) recommend(snap *Snapshot, query string, item domain.Item, pos, k int) (domain.Result, error) {
	neighbors, err := snap.Index.Query(pos, k)
	if err != nil {
		return domain.Result{}, err
	}
	res := domain.Result{Query: query, Results: make([]domain.Recommendation, 0, min(k, len(neighbors)))}
	for _, n := range neighbors {
		cand := snap.Catalog.At(n.Position)
		if cand.ID == item.ID {
			continue
		}
		if len(res.Results) == k {
			break
		}
		res.Results = append(res.Results, domain.Recommendation{Item: cand, Distance: n.Distance})
	}
	s.logger.Debug().Str("query", query).Int("id", item.ID).Int("k", k).Int("results", len(res.Results)).Msg("recommend")
	return res, nil
}

// SearchGenres ranks items against free genre text, e.g. "mecha comedy".
// Text with no token known to the vocabulary is ErrNotFound.
func (s *RecommendService) SearchGenres(text string, k int) (domain.Result, error) {
	k, err := s.resolveK(k)
	if err != nil {
		return domain.Result{}, err
	}
	snap := s.Snapshot()
	vec := snap.Model.Transform(text)
	if len(vec) == 0 {
		return domain.Result{}, fmt.Errorf("%w: no known genre in %q", domain.ErrNotFound, text)
	}
	neighbors, err := snap.Index.Search(vec, k)
	if err != nil {
		return domain.Result{}, err
	}
	res := domain.Result{Query: text, Results: make([]domain.Recommendation, len(neighbors))}
	for i, n := range neighbors {
		res.Results[i] = domain.Recommendation{Item: snap.Catalog.At(n.Position), Distance: n.Distance}
	}
	return res, nil
}

// TopRated returns the n best-rated items of the current catalog.
func (s *RecommendService) TopRated(n int) []domain.Item {
	return s.Snapshot().Catalog.TopRated(n)
}

// MostPopular returns the n items with the most members.
func (s *RecommendService) MostPopular(n int) []domain.Item {
	return s.Snapshot().Catalog.MostPopular(n)
}

// Summary describes the current catalog in one line.
func (s *RecommendService) Summary() string {
	return s.Snapshot().Summary
}
