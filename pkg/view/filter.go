// Package view prepares a parsed table for presentation: filter options,
// filtered rows, map layer and initial map position.
package view

import (
	"github.com/umputun/breakmap/pkg/domain"
)

// Unique returns distinct non-missing values of column in first-seen order
func Unique(t *domain.Table, column string) []string {
	res := []string{}
	if !t.Has(column) {
		return res
	}
	seen := map[string]bool{}
	for i := range t.Rows {
		v, ok := t.Value(i, column)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		res = append(res, v)
	}
	return res
}

// Filter keeps rows whose value for every selected column is one of the selected values.
// Empty selections and columns missing from the table are ignored.
func Filter(t *domain.Table, selections map[string][]string) *domain.Table {
	active := map[string]map[string]bool{}
	for col, values := range selections {
		if len(values) == 0 || !t.Has(col) {
			continue
		}
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v] = true
		}
		active[col] = set
	}
	if len(active) == 0 {
		return t
	}

	rows := make([]domain.Row, 0, t.Len())
	for i, row := range t.Rows {
		if matches(t, i, active) {
			rows = append(rows, row)
		}
	}
	return t.WithRows(rows)
}

func matches(t *domain.Table, i int, active map[string]map[string]bool) bool {
	for col, set := range active {
		v, ok := t.Value(i, col)
		if !ok || !set[v] {
			return false
		}
	}
	return true
}
