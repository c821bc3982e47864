package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"animerec/internal/domain"
	"animerec/internal/validation"
)

// Columns names the header columns holding each item field.
type Columns struct {
	ID       string
	Name     string
	Category string
	Rating   string
	Members  string
}

// DefaultColumns matches the anime.csv layout.
func DefaultColumns() Columns {
	return Columns{ID: "anime_id", Name: "name", Category: "genre", Rating: "rating", Members: "members"}
}

// record is one CSV row before conversion. Fields are trimmed before
// validation so blank cells count as missing.
type record struct {
	ID       string `validate:"required,number"`
	Name     string `validate:"required"`
	Category string `validate:"required"`
	Rating   string `validate:"required,numeric"`
	Members  string `validate:"required,numeric"`
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, cols Columns, logger zerolog.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
	}
	defer f.Close()
	c, err := Load(f, cols, logger)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", path).Int("items", c.Len()).Msg("catalog loaded")
	return c, nil
}

// Load reads a CSV catalog with a header row. Rows missing any required
// field are dropped. It fails with domain.ErrDataLoad when the source
// cannot be parsed or no valid rows remain.
func Load(r io.Reader, cols Columns, logger zerolog.Logger) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty source", domain.ErrDataLoad)
		}
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrDataLoad, err)
	}
	pos, err := columnPositions(header, cols)
	if err != nil {
		return nil, err
	}

	var items []domain.Item
	dropped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
		}
		it, err := parseRow(row, pos)
		if err != nil {
			dropped++
			logger.Debug().Int("line", line).Err(err).Msg("dropping catalog row")
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no valid records (%d dropped)", domain.ErrDataLoad, dropped)
	}

	c := New(items)
	ev := logger.Debug()
	if dropped > 0 || c.Shadowed() > 0 || c.DuplicateIDs() > 0 {
		ev = logger.Info()
	}
	ev.Int("items", c.Len()).
		Int("dropped", dropped).
		Int("duplicate_ids", c.DuplicateIDs()).
		Int("shadowed_names", c.Shadowed()).
		Msg("catalog parsed")
	return c, nil
}

type positions struct {
	id, name, category, rating, members int
}

func columnPositions(header []string, cols Columns) (positions, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	var missing []string
	find := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	p := positions{
		id:       find(cols.ID),
		name:     find(cols.Name),
		category: find(cols.Category),
		rating:   find(cols.Rating),
		members:  find(cols.Members),
	}
	if len(missing) > 0 {
		return p, fmt.Errorf("%w: missing columns %s", domain.ErrDataLoad, strings.Join(missing, ", "))
	}
	return p, nil
}

func parseRow(row []string, p positions) (domain.Item, error) {
	raw := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	cell := func(i int) string { return strings.TrimSpace(raw(i)) }
	rec := record{
		ID:       cell(p.id),
		Name:     cell(p.name),
		Category: cell(p.category),
		Rating:   cell(p.rating),
		Members:  cell(p.members),
	}
	if err := validation.Struct(rec); err != nil {
		return domain.Item{}, err
	}
	id, err := strconv.Atoi(rec.ID)
	if err != nil {
		return domain.Item{}, fmt.Errorf("id: %w", err)
	}
	rating, err := strconv.ParseFloat(rec.Rating, 64)
	if err != nil {
		return domain.Item{}, fmt.Errorf("rating: %w", err)
	}
	members, err := strconv.ParseInt(rec.Members, 10, 64)
	if err != nil {
		m, ferr := strconv.ParseFloat(rec.Members, 64)
		if ferr != nil {
			return domain.Item{}, fmt.Errorf("members: %w", err)
		}
		members = int64(m)
	}
	return domain.Item{
		ID:       id,
		Name:     raw(p.name),
		Category: rec.Category,
		Rating:   rating,
		Members:  members,
	}, nil
}
