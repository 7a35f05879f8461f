package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/ashmitsharp/payledger-api/internal/models"
)

// DefaultSimilarityThreshold is the minimum fuzzy score accepted by Resolve.
const DefaultSimilarityThreshold = 0.8

// LookupResolver resolves type, method and classification labels to rows,
// caching each table in memory.
type LookupResolver struct {
	store      LookupStore
	tables     map[models.LookupTable][]models.Lookup
	loadedAt   map[models.LookupTable]time.Time
	cacheMutex sync.RWMutex
	cacheTTL   time.Duration
	threshold  float64
}

// NewLookupResolver creates a resolver over store.
func NewLookupResolver(store LookupStore) *LookupResolver {
	return &LookupResolver{
		store:     store,
		tables:    make(map[models.LookupTable][]models.Lookup),
		loadedAt:  make(map[models.LookupTable]time.Time),
		cacheTTL:  5 * time.Minute,
		threshold: DefaultSimilarityThreshold,
	}
}

// List returns every row of table, loading it if the cache is cold or stale.
func (r *LookupResolver) List(ctx context.Context, table models.LookupTable) ([]models.Lookup, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidLookup, table)
	}

	r.cacheMutex.RLock()
	rows, ok := r.tables[table]
	fresh := time.Since(r.loadedAt[table]) < r.cacheTTL
	r.cacheMutex.RUnlock()
	if ok && fresh {
		return rows, nil
	}

	rows, err := r.store.ListLookups(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}

	r.cacheMutex.Lock()
	r.tables[table] = rows
	r.loadedAt[table] = time.Now()
	r.cacheMutex.Unlock()
	return rows, nil
}

// Invalidate drops the cached rows of table.
func (r *LookupResolver) Invalidate(table models.LookupTable) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()
	delete(r.tables, table)
	delete(r.loadedAt, table)
}

// Get finds a row by id.
func (r *LookupResolver) Get(ctx context.Context, table models.LookupTable, id int32) (models.Lookup, bool, error) {
	rows, err := r.List(ctx, table)
	if err != nil {
		return models.Lookup{}, false, err
	}
	for _, row := range rows {
		if row.ID == id {
			return row, true, nil
		}
	}
	return models.Lookup{}, false, nil
}

// KindOf returns the sign polarity of a transaction type id.
func (r *LookupResolver) KindOf(ctx context.Context, typeID int32) (models.TxnKind, error) {
	return r.kindIn(ctx, r.store, typeID)
}

func (r *LookupResolver) kindIn(ctx context.Context, store LookupStore, typeID int32) (models.TxnKind, error) {
	row, ok, err := r.getIn(ctx, store, models.TableTxnType, typeID)
	if err != nil {
		return models.KindUnknown, err
	}
	if !ok || !row.Kind.Valid() {
		return models.KindUnknown, fmt.Errorf("%w: type id %d", ErrUnknownCategory, typeID)
	}
	return row.Kind, nil
}

// getIn is Get with a fallback to store on a cache miss, so rows written
// earlier in the same store transaction are found.
func (r *LookupResolver) getIn(ctx context.Context, store LookupStore, table models.LookupTable, id int32) (models.Lookup, bool, error) {
	row, ok, err := r.Get(ctx, table, id)
	if err != nil || ok {
		return row, ok, err
	}
	rows, err := store.ListLookups(ctx, table)
	if err != nil {
		return models.Lookup{}, false, fmt.Errorf("failed to load %s: %w", table, err)
	}
	for _, row := range rows {
		if row.ID == id {
			return row, true, nil
		}
	}
	return models.Lookup{}, false, nil
}

// Resolve finds the row best matching label: case-insensitive exact match
// first, then prefix, then fuzzy similarity above the threshold.
func (r *LookupResolver) Resolve(ctx context.Context, table models.LookupTable, label string) (models.Lookup, bool, error) {
	rows, err := r.List(ctx, table)
	if err != nil {
		return models.Lookup{}, false, err
	}
	row, ok := r.match(label, rows)
	return row, ok, nil
}

// Add appends a label to table, returning the existing row if the label is
// already present.
func (r *LookupResolver) Add(ctx context.Context, table models.LookupTable, label string) (models.Lookup, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.Lookup{}, fmt.Errorf("%w: empty label", ErrInvalidLookup)
	}
	rows, err := r.List(ctx, table)
	if err != nil {
		return models.Lookup{}, err
	}
	for _, row := range rows {
		if strings.EqualFold(row.Label, label) {
			return row, nil
		}
	}

	inserted, err := insertLabel(ctx, r.store, table, label)
	if err != nil {
		return models.Lookup{}, err
	}
	r.Invalidate(table)
	return inserted, nil
}

// expenseTypeIn returns the type row used for synthesized bill payments: a
// label starting with "expense", else any expense-kind row, else a newly
// appended "Expense". It reads and writes through store, bypassing the cache;
// added tells the caller to invalidate the types once store commits.
func (r *LookupResolver) expenseTypeIn(ctx context.Context, store LookupStore) (row models.Lookup, added bool, err error) {
	rows, err := store.ListLookups(ctx, models.TableTxnType)
	if err != nil {
		return models.Lookup{}, false, fmt.Errorf("failed to load %s: %w", models.TableTxnType, err)
	}
	for _, row := range rows {
		if ok, _ := r.matchPrefix(strings.ToLower(row.Label), "expense"); ok {
			return row, false, nil
		}
	}
	for _, row := range rows {
		if row.Kind == models.KindExpense {
			return row, false, nil
		}
	}
	row, err = insertLabel(ctx, store, models.TableTxnType, "Expense")
	if err != nil {
		return models.Lookup{}, false, err
	}
	return row, true, nil
}

// resolveIn is Resolve against store's current rows instead of the cache.
func (r *LookupResolver) resolveIn(ctx context.Context, store LookupStore, table models.LookupTable, label string) (models.Lookup, bool, error) {
	rows, err := store.ListLookups(ctx, table)
	if err != nil {
		return models.Lookup{}, false, fmt.Errorf("failed to load %s: %w", table, err)
	}
	row, ok := r.match(label, rows)
	return row, ok, nil
}

func insertLabel(ctx context.Context, store LookupStore, table models.LookupTable, label string) (models.Lookup, error) {
	l := models.Lookup{Table: table, Label: label}
	if table == models.TableTxnType {
		l.Kind = models.KindFromLabel(label)
	}
	inserted, err := store.InsertLookup(ctx, l)
	if err != nil {
		return models.Lookup{}, fmt.Errorf("failed to add %s %q: %w", table, label, err)
	}
	return inserted, nil
}

func (r *LookupResolver) match(label string, rows []models.Lookup) (models.Lookup, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	if want == "" {
		return models.Lookup{}, false
	}

	var best models.Lookup
	bestScore := 0.0
	found := false
	for _, row := range rows {
		have := strings.ToLower(strings.TrimSpace(row.Label))

		var matched bool
		var score float64
		if matched, score = r.matchExact(have, want); !matched {
			if matched, score = r.matchPrefix(have, want); !matched {
				matched, score = r.matchFuzzy(have, want)
			}
		}

		if matched && score > bestScore {
			best = row
			bestScore = score
			found = true
		}
	}
	return best, found
}

func (r *LookupResolver) matchExact(have, want string) (bool, float64) {
	if have == want {
		return true, 1.0
	}
	return false, 0.0
}

// matchPrefix scores below an exact match, favouring longer overlaps.
func (r *LookupResolver) matchPrefix(have, want string) (bool, float64) {
	if strings.HasPrefix(have, want) {
		return true, 0.9 * float64(len(want)) / float64(len(have))
	}
	return false, 0.0
}

func (r *LookupResolver) matchFuzzy(have, want string) (bool, float64) {
	similarity := r.calculateSimilarity(have, want)
	if similarity >= r.threshold {
		return true, similarity * 0.8
	}
	return false, 0.0
}

// calculateSimilarity maps Levenshtein distance onto 0..1, 1 being identical.
func (r *LookupResolver) calculateSimilarity(s1, s2 string) float64 {
	if len(s1) == 0 && len(s2) == 0 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}
	distance := levenshtein.ComputeDistance(s1, s2)
	maxLen := max(len([]rune(s1)), len([]rune(s2)))
	return 1.0 - float64(distance)/float64(maxLen)
}
