package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fitjournal/internal/backup"
	"fitjournal/internal/store"
)

// maxImportSize caps pasted/uploaded backup payloads.
const maxImportSize = 10 << 20

type TransferHandler struct {
	entries  *store.EntryStore
	settings *store.SettingsStore
}

func NewTransferHandler(entries *store.EntryStore, settings *store.SettingsStore) *TransferHandler {
	return &TransferHandler{entries: entries, settings: settings}
}

// ExportBackup serves the versioned JSON envelope. By default it is an
// attachment download; ?raw=1 returns the bare payload for clipboard
// copy.
func (h *TransferHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	payload, err := backup.ExportBackup(h.entries.ListAll(), h.settings.Load(), time.Now())
	if err != nil {
		http.Error(w, "could not build backup", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("raw") == "" {
		name := fmt.Sprintf("fitjournal-backup-%s.json", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// ExportCSV serves the spreadsheet export. Fails with 404 when there is
// nothing to export; no file is produced.
func (h *TransferHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	payload, err := backup.ExportCSV(h.entries.ListAll())
	if err != nil {
		if errors.Is(err, backup.ErrNoData) {
			http.Error(w, "no data to export", http.StatusNotFound)
			return
		}
		http.Error(w, "could not build CSV", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if r.URL.Query().Get("raw") == "" {
		name := fmt.Sprintf("fitjournal-log-%s.csv", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

type importResponse struct {
	Message string `json:"message"`
	Entries int    `json:"entries"`
}

// Import accepts a backup payload as the raw request body (file upload
// or pasted text). A malformed envelope rejects the whole import and
// leaves both stores untouched. On success the settings are overwritten
// when present and the logs are merged by date, imported records
// winning.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "could not read body", http.StatusBadRequest)
		return
	}

	env, err := backup.ParseBackup(string(body))
	if err != nil {
		http.Error(w, "malformed JSON backup", http.StatusBadRequest)
		return
	}

	if env.UserSettings != nil {
		if err := h.settings.Save(*env.UserSettings); err != nil {
			http.Error(w, "could not save settings", http.StatusInternalServerError)
			return
		}
	}

	total := h.entries.Count()
	if env.Logs != nil {
		total, err = h.entries.MergeImport(env.Logs)
		if err != nil {
			http.Error(w, "could not merge entries", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, importResponse{
		Message: "Backup imported successfully",
		Entries: total,
	})
}
