package domain

import "strconv"

// geometry columns derived from the point field
const (
	ColumnPoint = "point"
	ColumnLon   = "lon"
	ColumnLat   = "lat"
)

// Record maps field name to field value for a single feed entry.
// Fields are discovered per entry, so two records may carry different keys.
type Record map[string]string

// Row is a record plus coordinates decomposed from its point field.
// Lon and Lat are nil when the point is absent or can't be parsed.
type Row struct {
	Record Record
	Lon    *float64
	Lat    *float64
}

// HasCoordinates reports whether both coordinates are present
func (r Row) HasCoordinates() bool {
	return r.Lon != nil && r.Lat != nil
}

// Table is an ordered sequence of rows aligned to a fixed column set.
// Columns keep first-seen order; Geometry is set when lon/lat columns were derived from point.
type Table struct {
	Columns  []string
	Rows     []Row
	Geometry bool
}

// Len returns number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether column is part of the table
func (t *Table) Has(column string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Value returns the cell for row i and column. The second value is false for a missing cell.
// Derived lon/lat cells are formatted from the parsed coordinates.
func (t *Table) Value(i int, column string) (string, bool) {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return "", false
	}
	row := t.Rows[i]
	if t.Geometry {
		switch column {
		case ColumnLon:
			return formatCoord(row.Lon)
		case ColumnLat:
			return formatCoord(row.Lat)
		}
	}
	v, ok := row.Record[column]
	return v, ok
}

// Map returns row i as a column-aligned map. Missing cells are nil, lon/lat are float64.
func (t *Table) Map(i int) map[string]any {
	res := make(map[string]any, len(t.Columns))
	row := t.Rows[i]
	for _, c := range t.Columns {
		if t.Geometry && (c == ColumnLon || c == ColumnLat) {
			ptr := row.Lon
			if c == ColumnLat {
				ptr = row.Lat
			}
			if ptr == nil {
				res[c] = nil
				continue
			}
			res[c] = *ptr
			continue
		}
		if v, ok := row.Record[c]; ok {
			res[c] = v
			continue
		}
		res[c] = nil
	}
	return res
}

// WithRows returns a table sharing columns with t but holding only the given rows
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{Columns: t.Columns, Rows: rows, Geometry: t.Geometry}
}

// GeoRows counts rows with both coordinates
func (t *Table) GeoRows() int {
	if t == nil {
		return 0
	}
	count := 0
	for _, r := range t.Rows {
		if r.HasCoordinates() {
			count++
		}
	}
	return count
}

func formatCoord(v *float64) (string, bool) {
	if v == nil {
		return "", false
	}
	return strconv.FormatFloat(*v, 'f', -1, 64), true
}
