package handlers

import (
	"net/http"
	"time"

	"fitjournal/internal/metrics"
	"fitjournal/internal/store"
)

type DashboardHandler struct {
	entries  *store.EntryStore
	settings *store.SettingsStore
}

func NewDashboardHandler(entries *store.EntryStore, settings *store.SettingsStore) *DashboardHandler {
	return &DashboardHandler{entries: entries, settings: settings}
}

// Get recomputes every dashboard metric from the full snapshot.
// Accepts optional query param: local_date=YYYY-MM-DD to use as the
// user's "today".
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	refDate := time.Now()
	if s := r.URL.Query().Get("local_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		refDate = parsed
	}

	summary := metrics.Summary(h.entries.ListAll(), h.settings.Load(), refDate)
	writeJSON(w, http.StatusOK, summary)
}
