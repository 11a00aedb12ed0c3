// Package runs exposes the run log over HTTP.
package runs

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/runlog"
)

// Path is where NewHandler is mounted.
const Path = "/api/runs"

// NewHandler returns an HTTP handler answering GET /api/runs with the
// matching run records as JSON. Filters: start, end (RFC3339), run_id, line,
// objective. Requests must include "Authorization: Bearer <token>" when token
// is non-empty.
func NewHandler(store runlog.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := runlog.Query{
			RunID: params.Get("run_id"),
			Line:  params.Get("line"),
		}
		for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			if s := params.Get(name); s != "" {
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					http.Error(w, "bad "+name+": "+err.Error(), http.StatusBadRequest)
					return
				}
				*dst = t
			}
		}
		if s := params.Get("objective"); s != "" {
			obj, err := model.ParseObjective(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			q.Objective = obj.String()
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []runlog.RunRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
