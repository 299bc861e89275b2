package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/breakmap/pkg/domain"
)

// date layouts seen in break_date fields
var dateLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05", "2006-01-02"}

// Generator creates RSS feeds from table rows
type Generator struct {
	baseURL string
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GenerateRSS creates an RSS 2.0 feed with one item per row, up to limit rows (0 means all).
// filter is a human-readable description of the applied filters, empty for none.
func (g *Generator) GenerateRSS(tbl *domain.Table, title, filter string, limit int) (string, error) {
	if filter != "" {
		title = fmt.Sprintf("%s (%s)", title, filter)
	}

	rows := tbl.Len()
	if limit > 0 && rows > limit {
		rows = limit
	}

	rssItems := make([]*RSSItem, 0, rows)
	for i := range rows {
		rssItems = append(rssItems, g.convertToRSSItem(tbl, i))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   fmt.Sprintf("%d water main breaks", tbl.Len()),
			AtomLink:      &AtomLink{Href: g.baseURL + "/rss", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	// marshal to XML
	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	// add XML declaration
	return xml.Header + string(output), nil
}

// convertToRSSItem converts row i to an RSS item, all columns are listed in the description
func (g *Generator) convertToRSSItem(tbl *domain.Table, i int) *RSSItem {
	value := func(col string) string {
		v, _ := tbl.Value(i, col)
		return v
	}

	title := "Water main break"
	if bt := value("break_type"); bt != "" {
		title = fmt.Sprintf("%s break", bt)
	}
	if st := value("status"); st != "" {
		title += ", " + strings.ToLower(st)
	}

	var desc strings.Builder
	for _, col := range tbl.Columns {
		if v, ok := tbl.Value(i, col); ok {
			desc.WriteString(fmt.Sprintf("%s: %s\n", col, v))
		}
	}

	item := &RSSItem{
		Title:       title,
		Link:        fmt.Sprintf("%s/#row-%d", g.baseURL, i),
		GUID:        RSSGUID{Value: fmt.Sprintf("%s/#row-%d", g.baseURL, i)},
		Description: strings.TrimSuffix(desc.String(), "\n"),
	}
	if bt := value("break_type"); bt != "" {
		item.Categories = []RSSCategory{{Domain: "break_type", Value: bt}}
	}
	if ts, ok := parseDate(value("break_date")); ok {
		item.PubDate = ts.Format(time.RFC1123Z)
	}
	return item
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
