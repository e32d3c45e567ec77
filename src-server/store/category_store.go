package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cityboard/src-server/apperr"
	"cityboard/src-server/color"
	"cityboard/src-server/model"
)

// fallbackTitles are the accepted spellings of the unknown/other bucket,
// lowercase.
var fallbackTitles = []string{"unbekannt", "sonstiges"}

// CategoryStore is the application root's single owner of the category
// collection: an in-memory snapshot kept in sync with the database,
// exposing read-only views and explicit mutation methods.
type CategoryStore struct {
	db       *bun.DB
	collator *collate.Collator

	mu         sync.RWMutex
	categories []model.Category
}

func NewCategoryStore(db *bun.DB) *CategoryStore {
	return &CategoryStore{
		db:       db,
		collator: collate.New(language.German, collate.IgnoreCase),
	}
}

// Load replaces the in-memory snapshot with the database contents,
// ordered by title under German collation.
func (s *CategoryStore) Load(ctx context.Context) error {
	categories := make([]model.Category, 0)
	if err := s.db.NewSelect().
		Model(&categories).
		Scan(ctx); err != nil {
		return fmt.Errorf("CategoryStore.Load: %w", err)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return s.collator.CompareString(categories[i].Title, categories[j].Title) < 0
	})

	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
	return nil
}

// List returns a copy of the current snapshot.
func (s *CategoryStore) List() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// ByTitle looks a category up by exact, case-sensitive title.
func (s *CategoryStore) ByTitle(title string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Title == title {
			return c, true
		}
	}
	return model.Category{}, false
}

// Known reports whether a title exists under case-insensitive comparison.
func (s *CategoryStore) Known(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Title, title) {
			return true
		}
	}
	return false
}

// Color resolves a category title to its display color. Unknown titles
// get the neutral fallback; this never fails, display code depends on it.
func (s *CategoryStore) Color(title string) string {
	if c, ok := s.ByTitle(title); ok && c.Color != "" {
		return c.Color
	}
	return color.Fallback
}

// ResolveID maps a free-text category label to a stored category id for
// persistence: exact title, then case-insensitive title, then the
// fallback bucket, then the first available category. Only an empty
// store is an error.
func (s *CategoryStore) ResolveID(title string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.categories) == 0 {
		return 0, apperr.Validation("category", "no categories available")
	}
	for _, c := range s.categories {
		if c.Title == title {
			return c.ID, nil
		}
	}
	for _, c := range s.categories {
		if strings.EqualFold(c.Title, title) {
			return c.ID, nil
		}
	}
	for _, c := range s.categories {
		for _, fb := range fallbackTitles {
			if strings.EqualFold(c.Title, fb) {
				return c.ID, nil
			}
		}
	}
	return s.categories[0].ID, nil
}

// hasDuplicateTitle reports whether another category (any casing) holds
// the title. Titles are unique case-insensitively; the column's unique
// constraint alone would let "Kultur" and "kultur" coexist.
func (s *CategoryStore) hasDuplicateTitle(title string, exceptID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID != exceptID && strings.EqualFold(c.Title, title) {
			return true
		}
	}
	return false
}

// Create inserts a new category and refreshes the snapshot.
func (s *CategoryStore) Create(ctx context.Context, title, colorValue string) (model.Category, error) {
	if s.hasDuplicateTitle(title, 0) {
		return model.Category{}, apperr.Validation("title", "already exists")
	}
	category := model.Category{Title: title, Color: colorValue}
	if err := category.Upsert(ctx, s.db); err != nil {
		return model.Category{}, err
	}
	if err := s.Load(ctx); err != nil {
		return model.Category{}, err
	}
	return category, nil
}

// Update rewrites title and color of an existing category. Appointment
// labels naming the old title follow the rename.
func (s *CategoryStore) Update(ctx context.Context, id int64, title, colorValue string) error {
	target := new(model.Category)
	if err := s.db.NewSelect().
		Model(target).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("category", strconv.FormatInt(id, 10))
		}
		return fmt.Errorf("CategoryStore.Update: %w", err)
	}
	if s.hasDuplicateTitle(title, id) {
		return apperr.Validation("title", "already exists")
	}

	category := model.Category{ID: id, Title: title, Color: colorValue}
	if err := category.Upsert(ctx, s.db); err != nil {
		return err
	}
	if target.Title != title {
		if _, err := s.db.NewUpdate().
			Model((*model.Appointment)(nil)).
			Set("category_label = ?", title).
			Where("category_label = ?", target.Title).
			Exec(ctx); err != nil {
			return fmt.Errorf("CategoryStore.Update: %w", err)
		}
	}
	return s.Load(ctx)
}

// Delete removes a category after reassigning every appointment and
// marker that references it to the fallback bucket, which is created on
// demand. The fallback bucket itself is not deletable.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	target := new(model.Category)
	if err := s.db.NewSelect().
		Model(target).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("category", strconv.FormatInt(id, 10))
		}
		return fmt.Errorf("CategoryStore.Delete: %w", err)
	}

	for _, fb := range fallbackTitles {
		if strings.EqualFold(target.Title, fb) {
			return apperr.Validation("category", "the fallback category is not deletable")
		}
	}

	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		fallback, err := ensureFallback(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().
			Model((*model.Appointment)(nil)).
			Set("category_id = ?", fallback.ID).
			Where("category_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't reassign appointments: %w", err)
		}
		// only labels naming the deleted category move to the
		// fallback token; preserved unknown labels stay untouched
		if _, err := tx.NewUpdate().
			Model((*model.Appointment)(nil)).
			Set("category_label = ?", fallback.Title).
			Where("category_label = ?", target.Title).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't relabel appointments: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*model.Marker)(nil)).
			Set("category_id = ?", fallback.ID).
			Where("category_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't reassign markers: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*model.Category)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't delete category: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("CategoryStore.Delete: %w", err)
	}

	return s.Load(ctx)
}

// EnsureFallback guarantees the fallback bucket exists and returns it.
func (s *CategoryStore) EnsureFallback(ctx context.Context) (model.Category, error) {
	fallback, err := ensureFallback(ctx, s.db)
	if err != nil {
		return model.Category{}, fmt.Errorf("CategoryStore.EnsureFallback: %w", err)
	}
	if err := s.Load(ctx); err != nil {
		return model.Category{}, err
	}
	return fallback, nil
}

func ensureFallback(ctx context.Context, db bun.IDB) (model.Category, error) {
	existing := make([]model.Category, 0)
	if err := db.NewSelect().
		Model(&existing).
		Scan(ctx); err != nil {
		return model.Category{}, err
	}
	for _, c := range existing {
		for _, fb := range fallbackTitles {
			if strings.EqualFold(c.Title, fb) {
				return c, nil
			}
		}
	}

	fallback := model.Category{
		Title: model.FallbackCategoryTitle,
		Color: color.Fallback,
	}
	if err := fallback.Upsert(ctx, db); err != nil {
		return model.Category{}, err
	}
	return fallback, nil
}
