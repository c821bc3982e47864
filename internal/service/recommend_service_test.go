package service

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"animerec/internal/catalog"
	"animerec/internal/domain"
	"animerec/internal/embedding/tfidf"
)

func newService(t *testing.T, items ...domain.Item) *RecommendService {
	t.Helper()
	snap, err := BuildSnapshot(catalog.New(items), tfidf.NewVectorizer(), zerolog.Nop())
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	return NewRecommendService(snap, 0, zerolog.Nop())
}

func abc(t *testing.T) *RecommendService {
	return newService(t,
		domain.Item{ID: 1, Name: "A", Category: "action"},
		domain.Item{ID: 2, Name: "B", Category: "action"},
		domain.Item{ID: 3, Name: "C", Category: "romance"},
	)
}

func animeFixture(t *testing.T) *RecommendService {
	return newService(t,
		domain.Item{ID: 32281, Name: "Kimi no Na wa.", Category: "Drama, Romance, School, Supernatural", Rating: 9.37, Members: 200630},
		domain.Item{ID: 5114, Name: "Fullmetal Alchemist: Brotherhood", Category: "Action, Adventure, Drama, Fantasy, Magic, Military, Shounen", Rating: 9.26, Members: 793665},
		domain.Item{ID: 28977, Name: "Gintama°", Category: "Action, Comedy, Historical, Parody, Samurai, Sci-Fi, Shounen", Rating: 9.25, Members: 114262},
		domain.Item{ID: 9253, Name: "Steins;Gate", Category: "Sci-Fi, Thriller", Rating: 9.17, Members: 673572},
		domain.Item{ID: 9969, Name: "Gintama'", Category: "Action, Comedy, Historical, Parody, Samurai, Sci-Fi, Shounen", Rating: 9.16, Members: 151266},
		domain.Item{ID: 820, Name: "Ginga Eiyuu Densetsu", Category: "Drama, Military, Sci-Fi, Space", Rating: 9.11, Members: 80679},
		domain.Item{ID: 199, Name: "Sen to Chihiro no Kamikakushi", Category: "Adventure, Drama, Supernatural", Rating: 8.93, Members: 466254},
		domain.Item{ID: 1, Name: "Empty Genre", Category: "the", Rating: 5, Members: 1},
	)
}

func TestRecommendExample(t *testing.T) {
	res, err := abc(t).Recommend("A", 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.Query != "A" || len(res.Results) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Results[0].Name != "B" || math.Abs(res.Results[0].Distance) > 1e-9 {
		t.Errorf("first = %+v, want B at distance 0", res.Results[0])
	}
	if res.Results[1].Name != "C" || math.Abs(res.Results[1].Distance-1) > 1e-9 {
		t.Errorf("second = %+v, want C at distance 1", res.Results[1])
	}
}

func TestRecommendNotFound(t *testing.T) {
	_, err := abc(t).Recommend("Unknown Title", 5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecommendNegativeK(t *testing.T) {
	_, err := abc(t).Recommend("A", -1)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestRecommendDefaultK(t *testing.T) {
	s := animeFixture(t)
	res, err := s.Recommend("Steins;Gate", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != DefaultK {
		t.Errorf("len = %d, want %d", len(res.Results), DefaultK)
	}
}

func TestRecommendProperties(t *testing.T) {
	s := animeFixture(t)
	snap := s.Snapshot()
	n := snap.Catalog.Len()
	for pos := 0; pos < n; pos++ {
		item := snap.Catalog.At(pos)
		for _, k := range []int{1, 3, n - 1, n + 5} {
			t.Run(fmt.Sprintf("%s/k=%d", item.Name, k), func(t *testing.T) {
				res, err := s.Recommend(item.Name, k)
				if err != nil {
					t.Fatal(err)
				}
				if want := min(k, n-1); len(res.Results) != want {
					t.Errorf("len = %d, want %d", len(res.Results), want)
				}
				for i, r := range res.Results {
					if r.ID == item.ID {
						t.Errorf("query item present at rank %d", i)
					}
					if i > 0 && res.Results[i-1].Distance > r.Distance {
						t.Errorf("distances not sorted at %d: %f > %f", i, res.Results[i-1].Distance, r.Distance)
					}
				}
				again, err := s.Recommend(item.Name, k)
				if err != nil {
					t.Fatal(err)
				}
				for i := range res.Results {
					if res.Results[i] != again.Results[i] {
						t.Errorf("rank %d differs between calls", i)
					}
				}
			})
		}
	}
}

func TestRecommendIdenticalCategoriesDistanceZero(t *testing.T) {
	res, err := animeFixture(t).Recommend("Gintama°", 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Results[0].Name != "Gintama'" || res.Results[0].Distance > 1e-9 {
		t.Errorf("top = %+v, want Gintama' at distance 0", res.Results[0])
	}
}

func TestRecommendZeroVectorItem(t *testing.T) {
	res, err := animeFixture(t).Recommend("Empty Genre", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 3 {
		t.Fatalf("len = %d, want 3", len(res.Results))
	}
	for i, r := range res.Results {
		if r.Distance != 1 {
			t.Errorf("rank %d distance = %f, want 1", i, r.Distance)
		}
	}
	if res.Results[0].ID != 32281 {
		t.Errorf("ties should keep catalog order, first = %d", res.Results[0].ID)
	}
}

func TestRecommendDropsSelfByIdentity(t *testing.T) {
	// Duplicate name: the first item is the query; the later one with the
	// same name is a different item and may be recommended.
	s := newService(t,
		domain.Item{ID: 1, Name: "Same", Category: "action"},
		domain.Item{ID: 2, Name: "Other", Category: "action"},
		domain.Item{ID: 3, Name: "Same", Category: "action"},
	)
	res, err := s.Recommend("Same", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 2 || res.Results[0].ID != 2 || res.Results[1].ID != 3 {
		t.Errorf("results = %+v, want IDs 2,3", res.Results)
	}
}

func TestRecommendHugeK(t *testing.T) {
	for _, k := range []int{1 << 40, math.MaxInt} {
		res, err := abc(t).Recommend("A", k)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if len(res.Results) != 2 || res.Results[0].Name != "B" || res.Results[1].Name != "C" {
			t.Errorf("k=%d results = %+v, want B,C", k, res.Results)
		}
	}
}

func TestRecommendRepeatedIDKeepsResultCount(t *testing.T) {
	s := newService(t,
		domain.Item{ID: 1, Name: "A", Category: "action"},
		domain.Item{ID: 1, Name: "A2", Category: "action"},
		domain.Item{ID: 3, Name: "C", Category: "romance"},
	)
	n := s.Snapshot().Catalog.Len()
	if n != 2 {
		t.Fatalf("catalog len = %d, want repeated ID dropped", n)
	}
	res, err := s.Recommend("A", 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := min(2, n-1); len(res.Results) != want {
		t.Fatalf("len = %d, want %d", len(res.Results), want)
	}
	if res.Results[0].ID != 3 {
		t.Errorf("results = %+v, want C", res.Results)
	}
	if _, err := s.Recommend("A2", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("A2 err = %v, want ErrNotFound", err)
	}
}

func TestRecommendByID(t *testing.T) {
	s := newService(t,
		domain.Item{ID: 1, Name: "Same", Category: "action"},
		domain.Item{ID: 2, Name: "Other", Category: "romance"},
		domain.Item{ID: 3, Name: "Same", Category: "action"},
	)
	res, err := s.RecommendByID(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Query != "Same" || len(res.Results) != 1 || res.Results[0].ID != 1 {
		t.Errorf("result = %+v, want shadowed item 3 to recommend 1", res)
	}
	if _, err := s.RecommendByID(99, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
	if _, err := s.RecommendByID(1, -1); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("negative k err = %v, want ErrInvalidQuery", err)
	}
	if res, err := s.RecommendByID(1, math.MaxInt); err != nil || len(res.Results) != 2 {
		t.Errorf("huge k = %+v, %v, want 2 results", res, err)
	}
}

func TestRecommendSingleItemCatalog(t *testing.T) {
	s := newService(t, domain.Item{ID: 1, Name: "Only", Category: "action"})
	res, err := s.Recommend("Only", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 0 {
		t.Errorf("results = %+v, want none", res.Results)
	}
}

func TestSearchGenres(t *testing.T) {
	s := animeFixture(t)
	res, err := s.SearchGenres("thriller", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 2 || res.Results[0].Name != "Steins;Gate" {
		t.Errorf("results = %+v", res.Results)
	}
	if _, err := s.SearchGenres("cooking", 2); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown genre err = %v, want ErrNotFound", err)
	}
}

func TestTopListsAndSummary(t *testing.T) {
	s := animeFixture(t)
	if top := s.TopRated(1); len(top) != 1 || top[0].ID != 32281 {
		t.Errorf("TopRated = %+v", top)
	}
	if pop := s.MostPopular(2); len(pop) != 2 || pop[0].ID != 5114 || pop[1].ID != 9253 {
		t.Errorf("MostPopular = %+v", pop)
	}
	if s.Summary() == "" {
		t.Error("Summary should not be empty")
	}
}

func TestSwapPublishesNewSnapshot(t *testing.T) {
	s := abc(t)
	snap, err := BuildSnapshot(catalog.New([]domain.Item{
		{ID: 10, Name: "X", Category: "mecha"},
		{ID: 11, Name: "Y", Category: "mecha"},
	}), tfidf.NewVectorizer(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	s.logger = zerolog.New(&buf)
	old := s.Swap(snap)
	if s.Snapshot() != snap {
		t.Error("Snapshot should return the swapped-in snapshot")
	}
	if !strings.Contains(buf.String(), `"replaced_built_at"`) || !strings.Contains(buf.String(), `"built_at"`) {
		t.Errorf("swap log = %s, want build times", buf.String())
	}
	if old.Catalog.Len() != 3 {
		t.Errorf("old snapshot len = %d, want 3", old.Catalog.Len())
	}
	if _, err := s.Recommend("A", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("A after swap err = %v, want ErrNotFound", err)
	}
	res, err := s.Recommend("X", 1)
	if err != nil || res.Results[0].Name != "Y" {
		t.Errorf("X after swap = %+v, %v", res, err)
	}
}

func TestRecommendConcurrent(t *testing.T) {
	s := animeFixture(t)
	want, err := s.Recommend("Steins;Gate", 4)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Recommend("Steins;Gate", 4)
			if err != nil {
				errs <- err
				return
			}
			for j := range want.Results {
				if got.Results[j] != want.Results[j] {
					errs <- fmt.Errorf("rank %d mismatch", j)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestRecommendDoesNotMutateCatalog(t *testing.T) {
	s := animeFixture(t)
	before := s.Snapshot().Catalog.At(0)
	if _, err := s.Recommend("Steins;Gate", 5); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Catalog.At(0) != before {
		t.Error("catalog changed by Recommend")
	}
}
