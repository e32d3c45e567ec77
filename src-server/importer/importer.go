// Package importer turns loosely-typed external event records into
// validated events and feeds them to the event store one by one.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cityboard/src-server/apperr"
	"cityboard/src-server/calendar"
	"cityboard/src-server/store"
)

// Record is the wire shape of one external event. The start time may
// arrive under the legacy "date" key; everything else is optional.
type Record struct {
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	Date        string `json:"date"`
	EndTime     string `json:"end_time"`
	Category    string `json:"category"`
	Recurrence  string `json:"recurrence"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Summary is the caller-visible outcome of one batch. Records fail
// independently; a failure never aborts the batch.
type Summary struct {
	BatchID   string   `json:"batch_id"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Failures  []string `json:"failures,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

type Importer struct {
	events     *store.EventStore
	categories *store.CategoryStore
}

func New(events *store.EventStore, categories *store.CategoryStore) *Importer {
	return &Importer{events: events, categories: categories}
}

// normalize validates one record and coerces its vocabulary onto the
// canonical sets. The category label is kept verbatim even when unknown
// (warn-and-preserve); only the recurrence is rewritten.
func normalize(r Record) (calendar.Event, error) {
	if r.Title == "" {
		return calendar.Event{}, apperr.Validation("title", "is required")
	}
	start := r.StartTime
	if start == "" {
		start = r.Date
	}
	if start == "" {
		return calendar.Event{}, apperr.Validation("start_time", "is required")
	}
	return calendar.Event{
		Title:       r.Title,
		StartTime:   start,
		EndTime:     r.EndTime,
		Category:    r.Category,
		Recurrence:  calendar.NormalizeRecurrence(r.Recurrence),
		Location:    r.Location,
		Description: r.Description,
	}, nil
}

// ImportAll runs the batch strictly sequentially, one persistence call
// at a time, so the failure accounting stays exact and the store is
// never flooded. Unknown categories are recorded as warnings, not
// rewritten.
func (imp *Importer) ImportAll(ctx context.Context, records []Record) Summary {
	summary := Summary{BatchID: uuid.NewString()}

	for _, record := range records {
		event, err := normalize(record)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: %v", record.Title, err))
			continue
		}

		if event.Category != "" && !imp.categories.Known(event.Category) {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("%s: unknown category %q, shown with the fallback color", event.Title, event.Category))
		}

		if _, err := imp.events.Create(ctx, event); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: %v", event.Title, err))
			continue
		}
		summary.Succeeded++
	}

	slog.Info("import finished",
		"batch", summary.BatchID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"warnings", len(summary.Warnings))
	return summary
}

// ImportJSON accepts either a JSON array of records or a single record
// object, mirroring what the file-upload client sends.
func (imp *Importer) ImportJSON(ctx context.Context, data []byte) (Summary, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		var single Record
		if err := json.Unmarshal(data, &single); err != nil {
			return Summary{}, apperr.Format("import payload", "neither a record array nor a record object")
		}
		records = []Record{single}
	}
	if len(records) == 0 {
		return Summary{}, apperr.Validation("records", "no records in payload")
	}
	return imp.ImportAll(ctx, records), nil
}
