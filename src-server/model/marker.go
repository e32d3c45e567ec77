package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Marker is a point of interest on the city map.
type Marker struct {
	bun.BaseModel `bun:"table:markers"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	Name        string  `bun:"name,notnull" json:"name"`
	Description string  `bun:"description,notnull" json:"description"`
	CategoryID  int64   `bun:"category_id,notnull" json:"category_id"`
	Latitude    float64 `bun:"latitude,notnull" json:"latitude"`
	Longitude   float64 `bun:"longitude,notnull" json:"longitude"`
	IsPublic    bool    `bun:"is_public" json:"is_public"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"-"`
}

func (m *Marker) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case m.Name == "":
		return fmt.Errorf("Marker.Upsert: name is required")
	case m.Description == "":
		return fmt.Errorf("Marker.Upsert: description is required")
	case m.CategoryID == 0:
		return fmt.Errorf("Marker.Upsert: category id is required")
	case m.Latitude < -90 || m.Latitude > 90:
		return fmt.Errorf("Marker.Upsert: latitude out of range")
	case m.Longitude < -180 || m.Longitude > 180:
		return fmt.Errorf("Marker.Upsert: longitude out of range")
	}

	exists, err := db.NewSelect().
		Model((*Category)(nil)).
		Where("id = ?", m.CategoryID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("Marker.Upsert: %w", err)
	}
	if !exists {
		return fmt.Errorf("Marker.Upsert: category id not found")
	}

	if _, err := db.NewInsert().
		Model(m).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("category_id = EXCLUDED.category_id").
		Set("latitude = EXCLUDED.latitude").
		Set("longitude = EXCLUDED.longitude").
		Set("is_public = EXCLUDED.is_public").
		Exec(ctx); err != nil {
		return fmt.Errorf("Marker.Upsert: %w", err)
	}
	return nil
}
