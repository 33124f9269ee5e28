package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"srg/task"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func SetupRoutes(mux *http.ServeMux, app *App) {
	mux.HandleFunc("/api/collect", app.CollectHandler())
	mux.HandleFunc("/api/process", app.StageHandler("process", app.runProcess))
	mux.HandleFunc("/api/report", app.StageHandler("report", app.runReport))

	mux.HandleFunc("/api/upload", app.UploadSalesHandler())
	mux.HandleFunc("/api/transactions", app.ListTransactionsHandler())

	mux.HandleFunc("/api/tasks", app.ListTasksHandler())
	mux.HandleFunc("/api/tasks/", app.GetTaskHandler())

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			app.GetConfigHandler()(w, r)
		case http.MethodPost:
			app.SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			app.ListAccountsHandler()(w, r)
		case http.MethodPost:
			app.SaveAccountHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}

// StageHandler starts fn as a background task and returns its handle.
// A second request while the stage is still running gets 409.
func (a *App) StageHandler(kind string, fn func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		tk, err := a.runner.Start(kind, fn)
		if err != nil {
			if errors.Is(err, task.ErrBusy) {
				writeJSONError(w, "a "+kind+" run is already in progress", http.StatusConflict)
				return
			}
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("task started: %s", tk.ID())
		writeJSON(w, tk.Snapshot())
	}
}

// CollectHandler starts the collection stage with the accounts held in
// memory. The months override comes from the request body.
func (a *App) CollectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			Months int `json:"months"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
		}

		accounts := a.currentAccounts()
		if len(accounts) == 0 {
			writeJSONError(w, "no portal accounts entered; add them first", http.StatusBadRequest)
			return
		}

		tk, err := a.runner.Start("collect", func() (string, error) {
			return a.runCollect(accounts, req.Months)
		})
		if err != nil {
			if errors.Is(err, task.ErrBusy) {
				writeJSONError(w, "a collect run is already in progress", http.StatusConflict)
				return
			}
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("task started: %s", tk.ID())
		writeJSON(w, tk.Snapshot())
	}
}

func (a *App) ListTasksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, a.runner.List())
	}
}

func (a *App) GetTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
		if id == "" {
			writeJSONError(w, "task id is required", http.StatusBadRequest)
			return
		}
		tk, ok := a.runner.Get(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, tk.Snapshot())
	}
}
