package main

import (
	"encoding/json"
	"net/http"
	"sort"

	"srg/model"
)

// accountView is what the API exposes about a stored account. The
// password stays in memory and never leaves the process.
type accountView struct {
	Company string `json:"company"`
	UserID  string `json:"userId"`
}

// ListAccountsHandler returns the companies with credentials entered in
// this session.
func (a *App) ListAccountsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		views := make([]accountView, 0, len(a.accounts))
		for _, acct := range a.accounts {
			views = append(views, accountView{Company: acct.Company, UserID: acct.UserID})
		}
		a.mu.Unlock()

		sort.Slice(views, func(i, j int) bool { return views[i].Company < views[j].Company })
		writeJSON(w, views)
	}
}

// SaveAccountHandler stores one portal login in memory for the running
// session.
func (a *App) SaveAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var acct model.Account
		if err := json.NewDecoder(r.Body).Decode(&acct); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if acct.Company == "" || acct.UserID == "" || acct.Password == "" {
			writeJSONError(w, "company, userId and password are required", http.StatusBadRequest)
			return
		}
		cfg := a.configSnapshot()
		if _, ok := cfg.CompanyByName(acct.Company); !ok {
			writeJSONError(w, "unknown company: "+acct.Company, http.StatusBadRequest)
			return
		}

		a.mu.Lock()
		a.accounts[acct.Company] = acct
		a.mu.Unlock()

		writeJSON(w, map[string]string{"message": "account stored for this session"})
	}
}
