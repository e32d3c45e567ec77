package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
)

// Graph holds the labels and datasets of one chart, stored as raw JSON
// exactly as the client uploaded them.
type Graph struct {
	bun.BaseModel `bun:"table:graphs"`

	ID       int64           `bun:"id,pk,autoincrement" json:"id"`
	Name     string          `bun:"name,notnull" json:"name"`
	Type     string          `bun:"type,notnull" json:"type"`
	Labels   json.RawMessage `bun:"labels,type:text" json:"labels"`
	Datasets json.RawMessage `bun:"datasets,type:text" json:"datasets"`
}

func (g *Graph) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case g.Name == "":
		return fmt.Errorf("Graph.Upsert: name is required")
	case g.Type == "":
		return fmt.Errorf("Graph.Upsert: type is required")
	case len(g.Labels) == 0:
		return fmt.Errorf("Graph.Upsert: labels are required")
	case len(g.Datasets) == 0:
		return fmt.Errorf("Graph.Upsert: datasets are required")
	}
	if !json.Valid(g.Labels) || !json.Valid(g.Datasets) {
		return fmt.Errorf("Graph.Upsert: labels/datasets must be valid JSON")
	}

	if _, err := db.NewInsert().
		Model(g).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("type = EXCLUDED.type").
		Set("labels = EXCLUDED.labels").
		Set("datasets = EXCLUDED.datasets").
		Exec(ctx); err != nil {
		return fmt.Errorf("Graph.Upsert: %w", err)
	}
	return nil
}
