package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Card is one tile on the dashboard grid. Type decides what it renders
// (weather, warnings, a chart); chart cards reference a Graph row.
type Card struct {
	bun.BaseModel `bun:"table:cards"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	Type    string `bun:"type,notnull" json:"type"`
	Index   int    `bun:"idx,notnull" json:"index"`
	GraphID int64  `bun:"graph_id,nullzero" json:"graph_id,omitempty"`
}

var cardTypes = map[string]struct{}{
	"weather": {},
	"wind":    {},
	"warning": {},
	"graph":   {},
	"clock":   {},
}

func (c *Card) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("Card.Upsert: name is required")
	case c.Type == "":
		return fmt.Errorf("Card.Upsert: type is required")
	}
	if _, ok := cardTypes[c.Type]; !ok {
		return fmt.Errorf("Card.Upsert: unknown card type %q", c.Type)
	}
	if c.Type == "graph" {
		if c.GraphID == 0 {
			return fmt.Errorf("Card.Upsert: graph cards need a graph id")
		}
		exists, err := db.NewSelect().
			Model((*Graph)(nil)).
			Where("id = ?", c.GraphID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("Card.Upsert: %w", err)
		}
		if !exists {
			return fmt.Errorf("Card.Upsert: graph id not found")
		}
	}

	if _, err := db.NewInsert().
		Model(c).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("type = EXCLUDED.type").
		Set("idx = EXCLUDED.idx").
		Set("graph_id = EXCLUDED.graph_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("Card.Upsert: %w", err)
	}
	return nil
}
