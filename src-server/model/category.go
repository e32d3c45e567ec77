package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"cityboard/src-server/color"
)

// FallbackCategoryTitle is the canonical "unknown/other" bucket. It is
// created on demand before any cascade that needs it and is never
// deletable.
const FallbackCategoryTitle = "Unbekannt"

type Category struct {
	bun.BaseModel `bun:"table:categories"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Title string `bun:"title,notnull,unique" json:"title"`
	Color string `bun:"color,notnull" json:"color"`
}

// Upsert validates and writes the category. The color is normalized to
// its hex form before it hits the database.
func (c *Category) Upsert(ctx context.Context, db bun.IDB) error {
	if c.Title == "" {
		return fmt.Errorf("Category.Upsert: title is required")
	}
	if c.Color == "" {
		c.Color = color.Fallback
	}
	hex, err := color.Normalize(c.Color)
	if err != nil {
		return fmt.Errorf("Category.Upsert: %w", err)
	}
	c.Color = hex

	if _, err := db.NewInsert().
		Model(c).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("color = EXCLUDED.color").
		Exec(ctx); err != nil {
		return fmt.Errorf("Category.Upsert: %w", err)
	}
	return nil
}
