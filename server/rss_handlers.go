package server

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/umputun/breakmap/pkg/feed"
)

const defaultRSSLimit = 100

// rssHandler serves filtered breaks as RSS feed, e.g. /rss?year=2021&limit=20
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.filtered(w, r)
	if !ok {
		return
	}

	limit := defaultRSSLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l >= 0 {
			limit = l
		}
	}

	generator := feed.NewGenerator(baseURL(r))
	rss, err := generator.GenerateRSS(tbl, s.config.GetFullConfig().Map.Title, describe(s.selections(r)), limit)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// baseURL makes scheme://host of the request, honoring X-Forwarded-Proto
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// describe makes "status: Closed; year: 2020, 2021" from selections, sorted by column
func describe(selections map[string][]string) string {
	cols := make([]string, 0, len(selections))
	for col := range selections {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, col+": "+strings.Join(selections[col], ", "))
	}
	return strings.Join(parts, "; ")
}
