package view

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/umputun/breakmap/pkg/domain"
)

// DefaultTooltip shows date, type and status of a break
const DefaultTooltip = `<b>Date:</b> {{.break_date}} <br/> <b>Type:</b> {{.break_type}} <br/> <b>Status:</b> {{.status}}`

// Colorer maps a field value to a color
type Colorer interface {
	Lookup(value string) domain.Color
}

// Tooltip renders per-row tooltip html from a template over record fields.
// Output is sanitized so field values can't inject markup beyond simple formatting.
type Tooltip struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// NewTooltip compiles tooltip template, fields are referenced as {{.field_name}}
func NewTooltip(text string) (*Tooltip, error) {
	tmpl, err := template.New("tooltip").Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse tooltip template: %w", err)
	}
	policy := bluemonday.NewPolicy()
	policy.AllowElements("b", "i", "em", "strong", "br", "span")
	return &Tooltip{tmpl: tmpl, policy: policy}, nil
}

// Render returns sanitized tooltip html for the record
func (tt *Tooltip) Render(rec domain.Record) string {
	var buf bytes.Buffer
	if err := tt.tmpl.Execute(&buf, map[string]string(rec)); err != nil {
		return ""
	}
	return tt.policy.Sanitize(buf.String())
}

// LayerParams defines how rows are turned into map features
type LayerParams struct {
	Colors     Colorer
	ColorField string
	Tooltip    *Tooltip
}

// Layer builds a GeoJSON point collection from rows with coordinates.
// Rows without coordinates are excluded and counted in skipped.
func Layer(t *domain.Table, p LayerParams) (fc *geojson.FeatureCollection, skipped int) {
	fc = &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for i, row := range t.Rows {
		if !row.HasCoordinates() {
			skipped++
			continue
		}
		props := make(map[string]any, len(row.Record)+2)
		for k, v := range row.Record {
			props[k] = v
		}
		if p.Colors != nil {
			value, _ := t.Value(i, p.ColorField)
			props["color"] = p.Colors.Lookup(value)
		}
		if p.Tooltip != nil {
			props["tooltip"] = p.Tooltip.Render(row.Record)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{*row.Lon, *row.Lat}),
			Properties: props,
		})
	}
	return fc, skipped
}
