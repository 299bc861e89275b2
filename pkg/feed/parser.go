package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/umputun/breakmap/pkg/domain"
)

// namespaces used by OData Atom feeds
const (
	AtomNS     = "http://www.w3.org/2005/Atom"
	MetadataNS = "http://schemas.microsoft.com/ado/2007/08/dataservices/metadata"
)

// Parse converts feed document text into a table.
// Each Atom entry becomes one row, fields are the immediate children of the entry's
// m:properties container. Columns are the union of field names in first-seen order.
// When a point column exists, lon and lat columns are derived from it.
func Parse(content string) (*domain.Table, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.CharsetReader = charset.NewReaderLabel

	p := &tableBuilder{seen: map[string]bool{}}
	root, closed := false, false
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDocument, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if closed && len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("%w: content after root element", domain.ErrMalformedDocument)
			}
			continue
		case xml.EndElement:
			depth--
			closed = depth == 0
			continue
		case xml.StartElement:
			if closed {
				return nil, fmt.Errorf("%w: content after root element", domain.ErrMalformedDocument)
			}
			root = true
			if t.Name.Space != AtomNS || t.Name.Local != "entry" {
				depth++
				continue
			}
		default:
			continue
		}

		rec, err := p.entry(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDocument, err)
		}
		p.rows = append(p.rows, domain.Row{Record: rec})
		closed = depth == 0 // entry used as the root element
	}
	if !root {
		return nil, fmt.Errorf("%w: no root element", domain.ErrMalformedDocument)
	}

	return p.table(), nil
}

type tableBuilder struct {
	columns []string
	seen    map[string]bool
	rows    []domain.Row
}

// entry consumes tokens up to the end of the current entry and collects fields
// of every properties container found below it
func (p *tableBuilder) entry(dec *xml.Decoder) (domain.Record, error) {
	rec := domain.Record{}
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read entry: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == MetadataNS && t.Name.Local == "properties" {
				if err := p.properties(dec, rec); err != nil {
					return nil, err
				}
				continue // properties consumed its own end element
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return rec, nil
}

// properties reads immediate children of a properties container into rec
func (p *tableBuilder) properties(dec *xml.Decoder, rec domain.Record) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read properties: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if !p.seen[name] {
				p.seen[name] = true
				p.columns = append(p.columns, name)
			}
			text, err := fieldText(dec)
			if err != nil {
				return fmt.Errorf("read field %s: %w", name, err)
			}
			if text == "" {
				delete(rec, name) // empty or null field is a missing value
				continue
			}
			rec[name] = text
		case xml.EndElement:
			return nil
		}
	}
}

// fieldText returns the text of a field element up to its first child element,
// the rest of the element is skipped
func fieldText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", err
			}
			if err := dec.Skip(); err != nil { // rest of the field
				return "", err
			}
			return sb.String(), nil
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func (p *tableBuilder) table() *domain.Table {
	tbl := &domain.Table{Columns: p.columns, Rows: p.rows}
	if tbl.Columns == nil {
		tbl.Columns = []string{}
	}
	if tbl.Rows == nil {
		tbl.Rows = []domain.Row{}
	}
	if !p.seen[domain.ColumnPoint] {
		return tbl
	}

	tbl.Geometry = true
	for _, c := range []string{domain.ColumnLon, domain.ColumnLat} {
		if !p.seen[c] {
			tbl.Columns = append(tbl.Columns, c)
		}
	}
	for i := range tbl.Rows {
		point, ok := tbl.Rows[i].Record[domain.ColumnPoint]
		if !ok {
			continue
		}
		if lon, lat, ok := ParsePoint(point); ok {
			tbl.Rows[i].Lon, tbl.Rows[i].Lat = &lon, &lat
		}
	}
	return tbl
}
