package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"srg/config"
)

// GetConfigHandler returns the current settings.
func (a *App) GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, a.configSnapshot())
	}
}

// SaveConfigHandler validates and persists new settings, then swaps
// them in for subsequent stage runs.
func (a *App) SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		for _, dir := range []string{newCfg.Paths.SalesRawData, newCfg.Paths.Processed, newCfg.Paths.ReportOutput} {
			if err := validateFolderPath(dir); err != nil {
				writeJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		newCfg.Normalize()
		if err := config.Save(settingsPath, newCfg); err != nil {
			log.Printf("Error saving config: %v", err)
			writeJSONError(w, "failed to save settings", http.StatusInternalServerError)
			return
		}

		a.mu.Lock()
		a.cfg = newCfg
		a.mu.Unlock()

		writeJSON(w, map[string]string{"message": "settings saved"})
	}
}

// validateFolderPath rejects paths that exist but are not directories.
// Empty or not-yet-created paths pass; stages create them on demand.
func validateFolderPath(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.Printf("Error checking folder path: %v", err)
		return errors.New("could not check folder path: " + path)
	}
	if !info.IsDir() {
		return errors.New("path is not a folder: " + path)
	}
	return nil
}
