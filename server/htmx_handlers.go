package server

import (
	"log"
	"net/http"

	"github.com/umputun/breakmap/pkg/domain"
	"github.com/umputun/breakmap/pkg/palette"
	"github.com/umputun/breakmap/pkg/view"
)

const (
	// template names
	templateIndex = "index.html"
	templateTable = "table.html"

	loadFailedMessage = "Failed to load data. Please check the file path or the file content."
)

// filterOption is one value of a multiselect
type filterOption struct {
	Value    string
	Selected bool
}

// filterControl is a multiselect for a single column
type filterControl struct {
	Column  string
	Options []filterOption
}

// tableView is the data for the rows table partial
type tableView struct {
	Error   string
	Partial bool // counter is sent out-of-band for htmx swaps
	Columns []string
	Rows    [][]string
	Count   int
	Total   int
}

// indexHandler renders the main page with filters, legend, map and the table
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	cfg := s.config.GetFullConfig()
	data := struct {
		Title    string
		Error    string
		Path     string
		Columns  []string
		Filters  []filterControl
		Legend   []palette.Entry
		Fallback domain.Color
		NoGeo    string
		Table    tableView
	}{
		Title:    cfg.Map.Title,
		Legend:   s.palette.Legend(),
		Fallback: s.palette.Fallback(),
	}

	snap := s.dataset.Current()
	data.Path = snap.Path
	if snap.Err != nil {
		log.Printf("[WARN] page requested while data is not available: %v", snap.Err)
		data.Error = loadFailedMessage
		s.render(w, templateIndex, data)
		return
	}

	selections := s.selections(r)
	filtered := view.Filter(snap.Table, selections)
	data.Columns = snap.Table.Columns
	data.Filters = s.filterControls(snap.Table, selections)
	data.Table = makeTableView(filtered, snap.Table.Len())
	if _, ok := view.ViewState(filtered, cfg.Map.Zoom, cfg.Map.Pitch); !ok {
		data.NoGeo = view.NoGeoMessage
	}
	s.render(w, templateIndex, data)
}

// tableHandler renders filtered rows for htmx swap, the row counter is updated out-of-band
func (s *Server) tableHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.dataset.Current()
	if snap.Err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		s.render(w, templateTable, tableView{Error: loadFailedMessage})
		return
	}
	filtered := view.Filter(snap.Table, s.selections(r))
	tv := makeTableView(filtered, snap.Table.Len())
	tv.Partial = true
	s.render(w, templateTable, tv)
}

// filterControls makes multiselects for configured filter columns present in the table
func (s *Server) filterControls(t *domain.Table, selections map[string][]string) []filterControl {
	res := []filterControl{}
	for _, col := range s.config.GetFullConfig().Filters {
		if !t.Has(col) {
			continue
		}
		selected := map[string]bool{}
		for _, v := range selections[col] {
			selected[v] = true
		}
		ctrl := filterControl{Column: col}
		for _, v := range view.Unique(t, col) {
			ctrl.Options = append(ctrl.Options, filterOption{Value: v, Selected: selected[v]})
		}
		res = append(res, ctrl)
	}
	return res
}

// render executes a named template, errors are logged as the response is already started
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[ERROR] failed to render %s: %v", name, err)
	}
}

func makeTableView(t *domain.Table, total int) tableView {
	res := tableView{Columns: t.Columns, Rows: make([][]string, 0, t.Len()), Count: t.Len(), Total: total}
	for i := range t.Len() {
		row := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			row[j], _ = t.Value(i, col)
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}
