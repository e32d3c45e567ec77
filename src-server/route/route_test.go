package route_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"cityboard/src-server/calendar"
	"cityboard/src-server/model"
	"cityboard/src-server/route"
	"cityboard/src-server/store"
	"cityboard/src-server/utils"
)

func newTestAppState(t *testing.T) *utils.AppState {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	bundb := bun.NewDB(db, sqlitedialect.New())
	if err := model.CreateSchema(bundb); err != nil {
		t.Fatal(err)
	}

	categories := store.NewCategoryStore(bundb)
	if _, err := categories.EnsureFallback(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := categories.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	events := store.NewEventStore(bundb, categories)
	if err := events.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	return &utils.AppState{
		Config:     utils.NewConfig(),
		RawDB:      db,
		BunDB:      bundb,
		Categories: categories,
		Events:     events,
	}
}

func newTestMux(t *testing.T) (*http.ServeMux, *utils.AppState) {
	t.Helper()
	as := newTestAppState(t)
	muxer := http.NewServeMux()
	route.Healthz(muxer)
	route.Categorys(muxer, as)
	route.Appointments(muxer, as)
	route.Calendar(muxer, as)
	route.Markers(muxer, as)
	route.Cards(muxer, as)
	route.Graphs(muxer, as)
	route.Import(muxer, as)
	route.Ical(muxer, as)
	return muxer, as
}

func doJSON(t *testing.T, muxer *http.ServeMux, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	muxer.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	muxer, _ := newTestMux(t)
	rec := doJSON(t, muxer, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	muxer, _ := newTestMux(t)

	rec := doJSON(t, muxer, http.MethodPost, "/categorys", map[string]string{
		"title": "kultur.",
		"color": "teal",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /categorys = %d, body %s", rec.Code, rec.Body)
	}
	var created struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Color string `json:"color"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	// title got cleaned up, color token got normalized to hex
	if created.Title != "Kultur" {
		t.Errorf("title = %q, want %q", created.Title, "Kultur")
	}
	if created.Color != "#4ECDC4" {
		t.Errorf("color = %q, want %q", created.Color, "#4ECDC4")
	}

	rec = doJSON(t, muxer, http.MethodGet, "/categorys", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /categorys = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Kultur") {
		t.Errorf("listing misses the new category: %s", rec.Body)
	}
}

func TestCategoryCreateWithoutTitle(t *testing.T) {
	muxer, _ := newTestMux(t)
	rec := doJSON(t, muxer, http.MethodPost, "/categorys", map[string]string{"color": "red"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /categorys without title = %d, want 400", rec.Code)
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	muxer, _ := newTestMux(t)

	rec := doJSON(t, muxer, http.MethodPost, "/appointments", calendar.Event{
		Title:      "Stadtfest",
		StartTime:  "2025-06-07T14:00",
		EndTime:    "2025-06-07T22:00",
		Category:   "Unbekannt",
		Location:   "Marktplatz",
		Recurrence: "Keine",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /appointments = %d, body %s", rec.Code, rec.Body)
	}
	var created calendar.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created appointment without id")
	}
	if created.Recurrence != calendar.RecurrenceNone {
		t.Errorf("recurrence = %q, want %q", created.Recurrence, calendar.RecurrenceNone)
	}

	rec = doJSON(t, muxer, http.MethodGet, "/appointments/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /appointments/%s = %d", created.ID, rec.Code)
	}

	created.Location = "Rathausplatz"
	rec = doJSON(t, muxer, http.MethodPut, "/appointments/"+created.ID, created)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /appointments/%s = %d, body %s", created.ID, rec.Code, rec.Body)
	}

	rec = doJSON(t, muxer, http.MethodDelete, "/appointments/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /appointments/%s = %d", created.ID, rec.Code)
	}
	rec = doJSON(t, muxer, http.MethodGet, "/appointments/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted appointment = %d, want 404", rec.Code)
	}
}

func TestAppointmentCreateWithoutStart(t *testing.T) {
	muxer, _ := newTestMux(t)
	rec := doJSON(t, muxer, http.MethodPost, "/appointments", calendar.Event{Title: "Kaputt"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /appointments without start = %d, want 400", rec.Code)
	}
}

func TestAppointmentFilterExpandsRecurrence(t *testing.T) {
	muxer, _ := newTestMux(t)

	rec := doJSON(t, muxer, http.MethodPost, "/appointments", calendar.Event{
		Title:      "Wochenmarkt",
		StartTime:  "2025-06-01T08:00",
		EndTime:    "2025-06-29T13:00",
		Category:   "Unbekannt",
		Recurrence: "weekly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /appointments = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, muxer, http.MethodGet, "/appointments?selected_date=2025-06-08", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /appointments?selected_date = %d", rec.Code)
	}
	var occurrences []calendar.Occurrence
	if err := json.Unmarshal(rec.Body.Bytes(), &occurrences); err != nil {
		t.Fatal(err)
	}
	if len(occurrences) != 1 {
		t.Fatalf("len(occurrences) = %d, want 1: %s", len(occurrences), rec.Body)
	}
	if !strings.Contains(occurrences[0].ID, "-repeat-") {
		t.Errorf("occurrence id = %q, want a generated one", occurrences[0].ID)
	}
	if occurrences[0].StartTime != "2025-06-08T08:00" {
		t.Errorf("occurrence start = %q", occurrences[0].StartTime)
	}
}

func TestCalendarMonth(t *testing.T) {
	muxer, _ := newTestMux(t)

	rec := doJSON(t, muxer, http.MethodGet, "/calendar/month?cursor=2025-06-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /calendar/month = %d", rec.Code)
	}
	var respBody struct {
		DaysInMonth    int    `json:"days_in_month"`
		FirstDayOffset int    `json:"first_day_offset"`
		Previous       string `json:"previous"`
		Next           string `json:"next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &respBody); err != nil {
		t.Fatal(err)
	}
	if respBody.DaysInMonth != 30 {
		t.Errorf("days_in_month = %d, want 30", respBody.DaysInMonth)
	}
	// June 2025 starts on a Sunday, last column of a Monday week
	if respBody.FirstDayOffset != 6 {
		t.Errorf("first_day_offset = %d, want 6", respBody.FirstDayOffset)
	}
	if respBody.Previous != "2025-05-01" || respBody.Next != "2025-07-01" {
		t.Errorf("previous/next = %q/%q", respBody.Previous, respBody.Next)
	}
}

func TestCalendarDayRejectsOutOfRange(t *testing.T) {
	muxer, _ := newTestMux(t)
	rec := doJSON(t, muxer, http.MethodGet, "/calendar/day?cursor=2025-06-01&day=31", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET /calendar/day?day=31 in June = %d, want 400", rec.Code)
	}
}

func TestMarkerLifecycle(t *testing.T) {
	muxer, as := newTestMux(t)

	category, err := as.Categories.EnsureFallback(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, muxer, http.MethodPost, "/markers", model.Marker{
		Name:        "Rathaus",
		Description: "Verwaltungssitz",
		CategoryID:  category.ID,
		Latitude:    51.7189,
		Longitude:   8.7575,
		IsPublic:    true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /markers = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, muxer, http.MethodPost, "/markers", model.Marker{
		Name:        "Nordpol",
		Description: "Zu weit weg",
		CategoryID:  category.ID,
		Latitude:    91,
		Longitude:   0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /markers with latitude 91 = %d, want 400", rec.Code)
	}

	rec = doJSON(t, muxer, http.MethodDelete, "/markers/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE /markers/999 = %d, want 404", rec.Code)
	}
}

func TestCardNeedsKnownType(t *testing.T) {
	muxer, _ := newTestMux(t)
	rec := doJSON(t, muxer, http.MethodPost, "/cards", model.Card{
		Name: "Kachel",
		Type: "teleporter",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /cards with unknown type = %d, want 400", rec.Code)
	}
}

func TestGraphCardLifecycle(t *testing.T) {
	muxer, _ := newTestMux(t)

	rec := doJSON(t, muxer, http.MethodPost, "/graphs", map[string]any{
		"name":     "Besucher",
		"type":     "bar",
		"labels":   []string{"Mo", "Di"},
		"datasets": []map[string]any{{"data": []int{4, 7}}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /graphs = %d, body %s", rec.Code, rec.Body)
	}
	var graph model.Graph
	if err := json.Unmarshal(rec.Body.Bytes(), &graph); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, muxer, http.MethodPost, "/cards", model.Card{
		Name:    "Besucher",
		Type:    "graph",
		GraphID: graph.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /cards (graph) = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, muxer, http.MethodPost, "/cards", model.Card{
		Name:    "Kaputt",
		Type:    "graph",
		GraphID: 999,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /cards with missing graph = %d, want 400", rec.Code)
	}
}

func TestImportAppointments(t *testing.T) {
	muxer, _ := newTestMux(t)

	payload := `[
		{"title": "Konzert", "start_time": "2025-07-01T19:00", "end_time": "2025-07-01T22:00", "category": "Zzz"},
		{"title": "", "start_time": "2025-07-02T10:00"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/import/appointments", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	muxer.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /import/appointments = %d, body %s", rec.Code, rec.Body)
	}

	var summary struct {
		Succeeded int      `json:"succeeded"`
		Failed    int      `json:"failed"`
		Warnings  []string `json:"warnings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 succeeded and 1 failed", summary)
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "Zzz") {
		t.Errorf("warnings = %v, want one about the unknown category", summary.Warnings)
	}
}

func TestIcalExport(t *testing.T) {
	muxer, _ := newTestMux(t)

	rec := doJSON(t, muxer, http.MethodPost, "/appointments", calendar.Event{
		Title:      "Wochenmarkt",
		StartTime:  "2025-06-01T08:00",
		EndTime:    "2025-06-29T13:00",
		Category:   "Unbekannt",
		Recurrence: "weekly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /appointments = %d", rec.Code)
	}

	rec = doJSON(t, muxer, http.MethodGet, "/appointments/export.ics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /appointments/export.ics = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("export misses VCALENDAR envelope")
	}
	if !strings.Contains(body, "SUMMARY:Wochenmarkt") {
		t.Error("export misses the appointment summary")
	}
	if !strings.Contains(body, "FREQ=WEEKLY") {
		t.Error("export misses the recurrence rule")
	}
}

func TestCategoryUpdateWithoutTitle(t *testing.T) {
	muxer, _ := newTestMux(t)

	rec := doJSON(t, muxer, http.MethodPost, "/categorys", map[string]string{
		"title": "Sport",
		"color": "green",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /categorys = %d, body %s", rec.Code, rec.Body)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, muxer, http.MethodPut, fmt.Sprintf("/categorys/%d", created.ID), map[string]string{
		"title": "",
		"color": "green",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PUT /categorys with blank title = %d, want 400", rec.Code)
	}
}
