// Package handlers wires the HTTP surface to the stores and the metrics
// engine. Handlers validate input and map store errors to status codes;
// all domain rules live below this layer.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"fitjournal/internal/models"
	"fitjournal/internal/store"
)

type EntryHandler struct {
	entries *store.EntryStore
}

func NewEntryHandler(entries *store.EntryStore) *EntryHandler {
	return &EntryHandler{entries: entries}
}

type entryRequest struct {
	Date            string   `json:"date"`
	Weight          *float64 `json:"weight"`
	ActivityType    string   `json:"activityType"`
	DurationMinutes *int     `json:"durationMinutes"`
	Notes           string   `json:"notes"`
}

// Upsert creates or replaces the entry for the given date. Replacement
// is whole-record: fields absent from the request end up absent in the
// store.
func (h *EntryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Weight != nil && *req.Weight <= 0 {
		http.Error(w, "weight must be a positive number", http.StatusBadRequest)
		return
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		http.Error(w, "duration must be a positive number of minutes", http.StatusBadRequest)
		return
	}

	entry := models.LogEntry{
		Date:            req.Date,
		Weight:          req.Weight,
		ActivityType:    req.ActivityType,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	}
	if err := h.entries.AddOrReplace(entry); err != nil {
		if errors.Is(err, store.ErrInvalidDate) {
			http.Error(w, "invalid date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Entry saved successfully",
		"date":    entry.Date,
	})
}

// List returns all entries sorted by date. Default order is descending
// (history table); ?order=asc serves the trend chart.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	out := h.entries.ListAll()

	asc := r.URL.Query().Get("order") == "asc"
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})

	writeJSON(w, http.StatusOK, out)
}

// Delete removes the entry named by the JSON body's date. The UI owns
// the confirmation prompt.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	deleted, err := h.entries.Delete(body.Date)
	if err != nil {
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear wipes every entry. Irreversible; the UI owns the confirmation.
func (h *EntryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.ClearAll(); err != nil {
		http.Error(w, "could not clear entries", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
