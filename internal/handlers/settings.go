package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"fitjournal/internal/metrics"
	"fitjournal/internal/models"
	"fitjournal/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingsStore
}

func NewSettingsHandler(settings *store.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the current profile, or the default record when nothing
// has been saved yet.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Load())
}

// Save overwrites the profile wholesale.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.settings.Save(req); err != nil {
		http.Error(w, "could not save settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.settings.Load())
}

type reminderResponse struct {
	URL string `json:"url"`
}

// ReminderLink returns a calendar deep link for the recurring weekly
// weigh-in reminder, if a weigh-in day is configured.
func (h *SettingsHandler) ReminderLink(w http.ResponseWriter, r *http.Request) {
	link, ok := metrics.ReminderLink(h.settings.Load(), time.Now())
	if !ok {
		http.Error(w, "no weigh-in day configured", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, reminderResponse{URL: link})
}
