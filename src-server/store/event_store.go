package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/uptrace/bun"

	"cityboard/src-server/apperr"
	"cityboard/src-server/calendar"
	"cityboard/src-server/model"
)

// EventStore owns the in-memory ordered event collection and keeps it in
// sync with the appointments table. Events in memory carry the free-text
// category label the caller supplied; only the storage representation
// resolves it to a category row (warn-and-preserve).
type EventStore struct {
	db         *bun.DB
	categories *CategoryStore

	mu     sync.RWMutex
	events []calendar.Event
}

func NewEventStore(db *bun.DB, categories *CategoryStore) *EventStore {
	return &EventStore{db: db, categories: categories}
}

// Load replaces the in-memory collection with the appointments table,
// in insertion (id) order. Category labels come from the joined row.
func (s *EventStore) Load(ctx context.Context) error {
	appointments := make([]model.Appointment, 0)
	if err := s.db.NewSelect().
		Model(&appointments).
		Relation("Category").
		Order("appointment.id ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("EventStore.Load: %w", err)
	}

	events := make([]calendar.Event, 0, len(appointments))
	for _, a := range appointments {
		// the stored label wins so preserved unknown labels survive
		// a reload; rows from before the label column fall back to
		// the joined category title
		categoryTitle := a.CategoryLabel
		if categoryTitle == "" {
			categoryTitle = model.FallbackCategoryTitle
			if a.Category != nil {
				categoryTitle = a.Category.Title
			}
		}
		events = append(events, calendar.Event{
			ID:          strconv.FormatInt(a.ID, 10),
			Title:       a.Title,
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
			Category:    categoryTitle,
			Recurrence:  a.Recurrence,
			Location:    a.Location,
			Description: a.Description,
		})
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
	return nil
}

// List returns a copy of the collection in insertion order.
func (s *EventStore) List() []calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]calendar.Event(nil), s.events...)
}

// Filtered runs the filter pipeline over the collection.
func (s *EventStore) Filtered(f calendar.Filter) []calendar.Occurrence {
	return calendar.Apply(s.List(), f)
}

// ForDay returns the expanded occurrences on day n of the cursor's
// month, ordered by start time.
func (s *EventStore) ForDay(cursor time.Time, day int) []calendar.Occurrence {
	return calendar.Apply(s.List(), calendar.Filter{
		SelectedDate: calendar.DateKey(cursor, day),
	})
}

// normalize validates the caller-supplied event and returns the copy the
// store keeps: times in ISO form with the end defaulted to the start,
// recurrence canonical, category label untouched.
func (s *EventStore) normalize(e calendar.Event) (calendar.Event, error) {
	if e.Title == "" {
		return calendar.Event{}, apperr.Validation("title", "is required")
	}
	if e.StartTime == "" {
		return calendar.Event{}, apperr.Validation("start_time", "is required")
	}
	start, err := calendar.ToISO(e.StartTime)
	if err != nil {
		return calendar.Event{}, err
	}
	e.StartTime = start
	if e.EndTime == "" {
		e.EndTime = e.StartTime
	} else {
		end, err := calendar.ToISO(e.EndTime)
		if err != nil {
			return calendar.Event{}, err
		}
		e.EndTime = end
	}
	e.Recurrence = calendar.NormalizeRecurrence(e.Recurrence)
	if e.Category == "" {
		if categories := s.categories.List(); len(categories) > 0 {
			e.Category = categories[0].Title
		} else {
			e.Category = model.FallbackCategoryTitle
		}
	}
	return e, nil
}

// Create persists a new event and appends it to the collection. The id
// is assigned by the database.
func (s *EventStore) Create(ctx context.Context, e calendar.Event) (calendar.Event, error) {
	normalized, err := s.normalize(e)
	if err != nil {
		return calendar.Event{}, err
	}
	categoryID, err := s.categories.ResolveID(normalized.Category)
	if err != nil {
		return calendar.Event{}, err
	}

	appointment := model.Appointment{
		Title:         normalized.Title,
		StartTime:     normalized.StartTime,
		EndTime:       normalized.EndTime,
		Location:      normalized.Location,
		CategoryID:    categoryID,
		CategoryLabel: normalized.Category,
		Recurrence:    normalized.Recurrence,
		Description:   normalized.Description,
	}
	if err := appointment.Upsert(ctx, s.db); err != nil {
		return calendar.Event{}, err
	}
	normalized.ID = strconv.FormatInt(appointment.ID, 10)

	s.mu.Lock()
	s.events = append(s.events, normalized)
	s.mu.Unlock()
	return normalized, nil
}

// Update rewrites an existing event. Occurrence ids resolve to their
// owning event first, so editing a generated occurrence edits the series.
func (s *EventStore) Update(ctx context.Context, id string, e calendar.Event) (calendar.Event, error) {
	ownerID := calendar.OwnerID(id)
	rowID, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return calendar.Event{}, apperr.NotFound("event", id)
	}

	exists, err := s.db.NewSelect().
		Model((*model.Appointment)(nil)).
		Where("id = ?", rowID).
		Exists(ctx)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("EventStore.Update: %w", err)
	}
	if !exists {
		return calendar.Event{}, apperr.NotFound("event", ownerID)
	}

	normalized, err := s.normalize(e)
	if err != nil {
		return calendar.Event{}, err
	}
	categoryID, err := s.categories.ResolveID(normalized.Category)
	if err != nil {
		return calendar.Event{}, err
	}

	appointment := model.Appointment{
		ID:            rowID,
		Title:         normalized.Title,
		StartTime:     normalized.StartTime,
		EndTime:       normalized.EndTime,
		Location:      normalized.Location,
		CategoryID:    categoryID,
		CategoryLabel: normalized.Category,
		Recurrence:    normalized.Recurrence,
		Description:   normalized.Description,
	}
	if err := appointment.Upsert(ctx, s.db); err != nil {
		return calendar.Event{}, err
	}
	normalized.ID = ownerID

	s.mu.Lock()
	for i := range s.events {
		if s.events[i].ID == ownerID {
			s.events[i] = normalized
			break
		}
	}
	s.mu.Unlock()
	return normalized, nil
}

// Delete removes an event. Occurrence ids resolve to the owning event;
// single occurrences are never deleted on their own.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	ownerID := calendar.OwnerID(id)
	rowID, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return apperr.NotFound("event", id)
	}

	result, err := s.db.NewDelete().
		Model((*model.Appointment)(nil)).
		Where("id = ?", rowID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("EventStore.Delete: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperr.NotFound("event", ownerID)
	}

	s.mu.Lock()
	for i := range s.events {
		if s.events[i].ID == ownerID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// ResolveOccurrence maps any occurrence id back to its owning event.
func (s *EventStore) ResolveOccurrence(id string) (calendar.Event, bool) {
	ownerID := calendar.OwnerID(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.ID == ownerID {
			return e, true
		}
	}
	return calendar.Event{}, false
}
