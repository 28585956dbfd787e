package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitjournal/internal/db"
	"fitjournal/internal/models"
	"fitjournal/internal/store"
)

type testAPI struct {
	router   http.Handler
	entries  *store.EntryStore
	settings *store.SettingsStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	kv := db.NewKV(conn)
	logger := zap.NewNop()
	entries := store.NewEntryStore(kv, logger)
	settings := store.NewSettingsStore(kv, logger)

	entryHandler := NewEntryHandler(entries)
	settingsHandler := NewSettingsHandler(settings)
	dashboardHandler := NewDashboardHandler(entries, settings)
	transferHandler := NewTransferHandler(entries, settings)

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		api.Post("/logs", entryHandler.Upsert)
		api.Get("/logs", entryHandler.List)
		api.Delete("/logs", entryHandler.Delete)
		api.Post("/logs/clear", entryHandler.Clear)
		api.Get("/settings", settingsHandler.Get)
		api.Put("/settings", settingsHandler.Save)
		api.Get("/reminder", settingsHandler.ReminderLink)
		api.Get("/dashboard", dashboardHandler.Get)
		api.Get("/export/backup", transferHandler.ExportBackup)
		api.Get("/export/csv", transferHandler.ExportCSV)
		api.Post("/import", transferHandler.Import)
	})

	return &testAPI{router: r, entries: entries, settings: settings}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestUpsertAndList(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-02","weight":79.2,"activityType":"running","durationMinutes":30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-01","weight":80}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []models.LogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	require.Equal(t, "2024-01-02", out[0].Date, "default order is newest first")

	rec = api.do(t, http.MethodGet, "/api/logs?order=asc", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "2024-01-01", out[0].Date)
}

func TestUpsert_RejectsInvalidInput(t *testing.T) {
	api := newTestAPI(t)

	for name, body := range map[string]string{
		"non-positive weight":   `{"date":"2024-01-01","weight":-2}`,
		"non-numeric weight":    `{"date":"2024-01-01","weight":"eighty"}`,
		"non-positive duration": `{"date":"2024-01-01","durationMinutes":0}`,
		"bad date":              `{"date":"Jan 1st"}`,
		"missing date":          `{"weight":80}`,
	} {
		rec := api.do(t, http.MethodPost, "/api/logs", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "case %q", name)
	}
	require.Equal(t, 0, api.entries.Count(), "rejected input must not create entries")
}

func TestDeleteEntry(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-01"}`)

	rec := api.do(t, http.MethodDelete, "/api/logs", `{"date":"2024-01-01"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/logs", `{"date":"2024-01-01"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearAllEntries(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-01"}`)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-02"}`)

	rec := api.do(t, http.MethodPost, "/api/logs/clear", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 0, api.entries.Count())
}

func TestSettingsSaveAndGet(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPut, "/api/settings", `{"firstName":"Maya","heightCm":172,"weighInDay":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/settings", "")
	var got models.UserSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Maya", got.FirstName)
	require.Equal(t, 172.0, *got.HeightCm)
	require.Equal(t, 1, *got.WeighInDay)
}

func TestReminderLink(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/reminder", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	api.do(t, http.MethodPut, "/api/settings", `{"weighInDay":6}`)
	rec = api.do(t, http.MethodGet, "/api/reminder", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "calendar.google.com")
	require.Contains(t, rec.Body.String(), "BYDAY%3DSA")
}

func TestDashboardScenario(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-01","weight":80}`)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-08","weight":78}`)

	rec := api.do(t, http.MethodGet, "/api/dashboard?local_date=2024-01-08", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		CurrentWeight     *float64 `json:"currentWeight"`
		TotalChange       *float64 `json:"totalChange"`
		CurrentStreakDays int      `json:"currentStreakDays"`
		EntriesThisWeek   int      `json:"entriesThisWeek"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 78.0, *got.CurrentWeight)
	require.Equal(t, 2.0, *got.TotalChange)
	require.Equal(t, 1, got.CurrentStreakDays)
	require.Equal(t, 1, got.EntriesThisWeek)

	rec = api.do(t, http.MethodGet, "/api/dashboard?local_date=nope", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHeaders(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-01","weight":80}`)

	rec := api.do(t, http.MethodGet, "/api/export/backup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	rec = api.do(t, http.MethodGet, "/api/export/backup?raw=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Disposition"), "raw export is for clipboard copy")

	rec = api.do(t, http.MethodGet, "/api/export/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
}

func TestExportCSV_NoDataReported(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/export/csv", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "no data")
}

func TestImport_MalformedLeavesStoreUntouched(t *testing.T) {
	api := newTestAPI(t)
	notes := gofakeit.Sentence(5)
	require.NoError(t, api.entries.AddOrReplace(models.LogEntry{Date: "2024-01-01", Notes: notes}))

	rec := api.do(t, http.MethodPost, "/api/import", "{this is not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	all := api.entries.ListAll()
	require.Len(t, all, 1)
	require.Equal(t, notes, all[0].Notes)
}

func TestImport_MergesAndReportsCount(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-01","weight":80,"notes":"x"}`)

	rec := api.do(t, http.MethodPost, "/api/import", `{
		"version": 1,
		"exportedAt": "2024-05-15T10:30:00Z",
		"userSettings": {"firstName":"Maya","heightCm":"172"},
		"logs": [
			{"date":"2024-01-01","weight":"79.5"},
			{"date":"2024-01-03","weight":77}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries int `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Entries)

	got := api.settings.Load()
	require.Equal(t, "Maya", got.FirstName)
	require.Equal(t, 172.0, *got.HeightCm)

	entries := make(map[string]models.LogEntry)
	for _, e := range api.entries.ListAll() {
		entries[e.Date] = e
	}
	require.Contains(t, entries, "2024-01-01")
	require.Equal(t, 79.5, *entries["2024-01-01"].Weight)
	require.Empty(t, entries["2024-01-01"].Notes, "imported record replaces the whole local record")
	require.Equal(t, 77.0, *entries["2024-01-03"].Weight)
}

func TestExportImportRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-01","weight":80,"activityType":"cycling","durationMinutes":45,"notes":"hills"}`)
	api.do(t, http.MethodPost, "/api/logs", `{"date":"2024-01-02"}`)
	api.do(t, http.MethodPut, "/api/settings", `{"firstName":"Maya","heightCm":172}`)

	exported := api.do(t, http.MethodGet, "/api/export/backup?raw=1", "").Body.String()
	before := api.entries.ListAll()

	fresh := newTestAPI(t)
	rec := fresh.do(t, http.MethodPost, "/api/import", exported)
	require.Equal(t, http.StatusOK, rec.Code)

	byDate := func(list []models.LogEntry) map[string]models.LogEntry {
		m := make(map[string]models.LogEntry)
		for _, e := range list {
			m[e.Date] = e
		}
		return m
	}
	require.Equal(t, byDate(before), byDate(fresh.entries.ListAll()))
	require.Equal(t, api.settings.Load(), fresh.settings.Load())
}
