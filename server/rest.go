package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/umputun/breakmap/pkg/dataset"
	"github.com/umputun/breakmap/pkg/palette"
	"github.com/umputun/breakmap/pkg/view"
)

// statusHandler returns server status and data file info
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.dataset.Current()
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().Format(time.RFC3339),
		"path":    snap.Path,
	}
	if snap.Err != nil {
		status["status"] = "error"
		status["error"] = snap.Err.Error()
		switch {
		case dataset.Unavailable(snap.Err):
			status["reason"] = "unavailable"
		case dataset.Malformed(snap.Err):
			status["reason"] = "malformed"
		}
		renderJSON(w, r, http.StatusOK, status)
		return
	}
	status["loaded_at"] = snap.LoadedAt.Format(time.RFC3339)
	status["rows"] = snap.Table.Len()
	status["columns"] = len(snap.Table.Columns)
	status["geometry"] = snap.Table.Geometry
	if snap.Meta.Title != "" {
		status["feed"] = snap.Meta
	}
	renderJSON(w, r, http.StatusOK, status)
}

// columnsHandler returns column names in first-seen order
func (s *Server) columnsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.dataset.Current()
	if snap.Err != nil {
		renderError(w, r, snap.Err, http.StatusServiceUnavailable)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"columns": snap.Table.Columns})
}

// tableJSONHandler returns filtered rows, each row as a column->value object
func (s *Server) tableJSONHandler(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.filtered(w, r)
	if !ok {
		return
	}
	rows := make([]map[string]any, 0, tbl.Len())
	for i := range tbl.Len() {
		rows = append(rows, tbl.Map(i))
	}
	renderJSON(w, r, http.StatusOK, map[string]any{
		"columns": tbl.Columns,
		"rows":    rows,
		"count":   len(rows),
	})
}

// filtersHandler returns options for each configured filter column present in the table
func (s *Server) filtersHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.dataset.Current()
	if snap.Err != nil {
		renderError(w, r, snap.Err, http.StatusServiceUnavailable)
		return
	}
	res := map[string][]string{}
	for _, col := range s.config.GetFullConfig().Filters {
		if snap.Table.Has(col) {
			res[col] = view.Unique(snap.Table, col)
		}
	}
	renderJSON(w, r, http.StatusOK, res)
}

// geojsonHandler returns map layer for filtered rows with initial view state
func (s *Server) geojsonHandler(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.filtered(w, r)
	if !ok {
		return
	}
	cfg := s.config.GetFullConfig()
	fc, skipped := view.Layer(tbl, view.LayerParams{Colors: s.palette, ColorField: cfg.Colors.Field, Tooltip: s.tooltip})
	if skipped > 0 {
		log.Printf("[DEBUG] %d rows without coordinates skipped", skipped)
	}

	layer, err := json.Marshal(fc)
	if err != nil {
		log.Printf("[ERROR] failed to encode geojson: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"layer":   json.RawMessage(layer),
		"skipped": skipped,
		"radius":  cfg.Map.Radius,
	}
	if state, ok := view.ViewState(tbl, cfg.Map.Zoom, cfg.Map.Pitch); ok {
		resp["view"] = state
	} else {
		resp["message"] = view.NoGeoMessage
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// colorHandler returns color for a field value
func (s *Server) colorHandler(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("value")
	c := s.palette.Lookup(value)
	renderJSON(w, r, http.StatusOK, palette.Entry{Value: value, Color: c})
}

// reloadHandler drops cached file content and parses the file again
func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.dataset.Invalidate(r.Context())
	if snap.Err != nil {
		log.Printf("[WARN] reload of %s failed: %v", snap.Path, snap.Err)
		renderError(w, r, snap.Err, http.StatusServiceUnavailable)
		return
	}
	log.Printf("[INFO] reloaded %s, %d rows", snap.Path, snap.Table.Len())
	renderJSON(w, r, http.StatusOK, map[string]any{
		"status": "reloaded",
		"rows":   snap.Table.Len(),
	})
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
