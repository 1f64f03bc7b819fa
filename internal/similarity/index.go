package similarity

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"reelmatch/internal/catalog"
	"reelmatch/internal/logging"
	"reelmatch/internal/services"
)

// MatchPolicy controls which catalog title a query resolves to when several
// titles contain it.
type MatchPolicy int

const (
	// MatchExactFirst prefers a title equal to the query under case folding,
	// then falls back to MatchFirst.
	MatchExactFirst MatchPolicy = iota
	// MatchFirst takes the first title in catalog order containing the query.
	MatchFirst
)

// ParseMatchPolicy converts a config value into a MatchPolicy.
func ParseMatchPolicy(value string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "exact_first":
		return MatchExactFirst, nil
	case "first":
		return MatchFirst, nil
	default:
		return MatchExactFirst, fmt.Errorf("unknown match policy %q", value)
	}
}

// Scored pairs a catalog title with its similarity to the query title.
type Scored struct {
	Title    string  `json:"title"`
	RowIndex int     `json:"row_index"`
	Score    float64 `json:"score"`
}

// Index holds the catalog and matrix plus precomputed folded titles.
type Index struct {
	catalog *catalog.Catalog
	matrix  *catalog.Matrix
	policy  MatchPolicy
	logger  *slog.Logger

	folded []string
	rows   map[string]int
}

// Option configures an Index.
type Option func(*Index)

// WithMatchPolicy overrides the default MatchExactFirst policy.
func WithMatchPolicy(policy MatchPolicy) Option {
	return func(i *Index) {
		i.policy = policy
	}
}

// WithLogger attaches a logger used for load-time diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New builds an index, failing with services.ErrStaleIndex when the matrix
// does not have exactly one row per catalog entry.
func New(cat *catalog.Catalog, matrix *catalog.Matrix, opts ...Option) (*Index, error) {
	if err := catalog.CheckAlignment(cat, matrix); err != nil {
		return nil, err
	}
	idx := &Index{
		catalog: cat,
		matrix:  matrix,
		policy:  MatchExactFirst,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = logging.NewComponentLogger(idx.logger, "similarity")

	folder := cases.Fold()
	idx.folded = make([]string, cat.Len())
	idx.rows = make(map[string]int, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		title := cat.Title(i)
		idx.folded[i] = folder.String(title)
		if _, exists := idx.rows[title]; !exists {
			idx.rows[title] = i
		}
	}
	if dups := cat.Duplicates(); len(dups) > 0 {
		logging.WarnWithContext(idx.logger, "catalog contains duplicate titles", "catalog_duplicate_titles",
			logging.Int("duplicate_count", len(dups)),
			logging.String("first_duplicate", dups[0]),
			logging.String(logging.FieldErrorHint, "deduplicate titles when exporting the catalog"),
			logging.String(logging.FieldImpact, "only the first row of each duplicate title is reachable"),
		)
	}
	return idx, nil
}

// Len returns the number of catalog titles.
func (i *Index) Len() int {
	return i.catalog.Len()
}

// Catalog exposes the underlying catalog.
func (i *Index) Catalog() *catalog.Catalog {
	return i.catalog
}

// Contains reports whether title is a canonical catalog title.
func (i *Index) Contains(title string) bool {
	_, ok := i.rows[title]
	return ok
}

// ResolveTitle maps a free-text query to a canonical catalog title. It returns
// services.ErrNotFound for a blank query or when no title contains the query.
func (i *Index) ResolveTitle(query string) (string, error) {
	matches := i.search(query, 1)
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrNotFound, "similarity", "resolve title", fmt.Sprintf("no catalog title matches %q", strings.TrimSpace(query)), nil)
	}
	return i.catalog.Title(matches[0]), nil
}

// Search returns up to limit titles matching query, ordered the way
// ResolveTitle considers them. A non-positive limit returns every match.
func (i *Index) Search(query string, limit int) []string {
	rows := i.search(query, limit)
	titles := make([]string, len(rows))
	for n, row := range rows {
		titles[n] = i.catalog.Title(row)
	}
	return titles
}

func (i *Index) search(query string, limit int) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	needle := cases.Fold().String(query)

	var rows []int
	exact := -1
	if i.policy == MatchExactFirst {
		for row, folded := range i.folded {
			if folded == needle {
				exact = row
				rows = append(rows, row)
				break
			}
		}
	}
	for row, folded := range i.folded {
		if limit > 0 && len(rows) >= limit {
			break
		}
		if row == exact {
			continue
		}
		if strings.Contains(folded, needle) {
			rows = append(rows, row)
		}
	}
	return rows
}

// Recommend returns the k titles most similar to title, highest score first.
// title must be canonical (see ResolveTitle); otherwise it returns
// services.ErrUnknownTitle. Fewer than k results are returned only when the
// catalog has k or fewer titles.
func (i *Index) Recommend(title string, k int) ([]Scored, error) {
	if k <= 0 {
		return nil, services.Wrap(services.ErrValidation, "similarity", "recommend", fmt.Sprintf("k must be positive, got %d", k), nil)
	}
	self, ok := i.rows[title]
	if !ok {
		return nil, services.Wrap(services.ErrUnknownTitle, "similarity", "recommend", fmt.Sprintf("%q is not in the catalog", title), nil)
	}

	row := i.matrix.Row(self)
	candidates := make([]Scored, 0, len(row)-1)
	for j, score := range row {
		if j == self {
			continue
		}
		candidates = append(candidates, Scored{Title: i.catalog.Title(j), RowIndex: j, Score: score})
	}
	slices.SortStableFunc(candidates, func(a, b Scored) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}
