package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"cityboard/src-server/calendar"
)

// Appointment is the storage representation of a calendar event. Start
// and end times are ISO 8601 UTC strings; the category is stored twice,
// as the resolved row id and as the free-text label events carry in
// memory.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Title       string `bun:"title,notnull" json:"title"`
	StartTime   string `bun:"start_time,notnull" json:"start_time"`
	EndTime     string `bun:"end_time,notnull" json:"end_time"`
	Location    string `bun:"location" json:"location"`
	CategoryID  int64  `bun:"category_id,notnull" json:"category_id"`
	// the label as the caller supplied it; category_id only resolves
	// it for referential integrity, the label itself must round-trip
	CategoryLabel string `bun:"category_label" json:"-"`
	Recurrence    string `bun:"recurrence" json:"recurrence"`
	Description   string `bun:"description" json:"description"`

	CreatedAt int64 `bun:"created_at,notnull" json:"-"`
	UpdatedAt int64 `bun:"updated_at" json:"-"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"-"`
}

// Upsert validates and writes the appointment. Times must already be in
// ISO form (see calendar.ToISO); an empty end time is rejected here, not
// silently repaired, because defaulting is the store's job.
func (a *Appointment) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case a.Title == "":
		return fmt.Errorf("Appointment.Upsert: title is required")
	case a.StartTime == "":
		return fmt.Errorf("Appointment.Upsert: start time is required")
	case a.EndTime == "":
		return fmt.Errorf("Appointment.Upsert: end time is required")
	case a.CategoryID == 0:
		return fmt.Errorf("Appointment.Upsert: category id is required")
	}
	if _, err := calendar.ParseTime(a.StartTime); err != nil {
		return fmt.Errorf("Appointment.Upsert: %w", err)
	}
	if _, err := calendar.ParseTime(a.EndTime); err != nil {
		return fmt.Errorf("Appointment.Upsert: %w", err)
	}
	if a.Recurrence == "" {
		a.Recurrence = calendar.RecurrenceNone
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}
	a.UpdatedAt = time.Now().Unix()

	if _, err := db.NewInsert().
		Model(a).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("start_time = EXCLUDED.start_time").
		Set("end_time = EXCLUDED.end_time").
		Set("location = EXCLUDED.location").
		Set("category_id = EXCLUDED.category_id").
		Set("category_label = EXCLUDED.category_label").
		Set("recurrence = EXCLUDED.recurrence").
		Set("description = EXCLUDED.description").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("Appointment.Upsert: %w", err)
	}
	return nil
}
