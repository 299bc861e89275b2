package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/breakmap/pkg/config"
	"github.com/umputun/breakmap/pkg/dataset"
	"github.com/umputun/breakmap/pkg/domain"
	"github.com/umputun/breakmap/pkg/palette"
	"github.com/umputun/breakmap/server/mocks"
)

func ptr(v float64) *float64 { return &v }

func testTable() *domain.Table {
	return &domain.Table{
		Columns:  []string{"break_date", "break_type", "status", "year", "point", "lon", "lat"},
		Geometry: true,
		Rows: []domain.Row{
			{Record: domain.Record{"break_date": "2020-01-14T00:00:00", "break_type": "AC", "status": "Closed", "year": "2020",
				"point": "POINT (-114.08 51.05)"}, Lon: ptr(-114.08), Lat: ptr(51.05)},
			{Record: domain.Record{"break_date": "2021-03-02T00:00:00", "break_type": "ACG", "status": "Open", "year": "2021",
				"point": "POINT (-114.12 51.01)"}, Lon: ptr(-114.12), Lat: ptr(51.01)},
			{Record: domain.Record{"break_date": "2021-07-09T00:00:00", "break_type": "CI", "status": "Closed", "year": "2021",
				"point": "POINT ()"}},
		},
	}
}

func okSnapshot(tbl *domain.Table) dataset.Snapshot {
	return dataset.Snapshot{Path: "data/breaks.xml", Table: tbl, LoadedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Meta: domain.FeedMeta{Title: "Water Main Breaks", Type: "atom", Entries: tbl.Len()}}
}

func errSnapshot() dataset.Snapshot {
	return dataset.Snapshot{Path: "data/missing.xml", Err: fmt.Errorf("%w: open data/missing.xml: no such file", domain.ErrDataUnavailable)}
}

func configMock(listen string) *mocks.ConfigProviderMock {
	cfg := config.Default()
	cfg.Server.Listen = listen
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) { return cfg.Server.Listen, cfg.Server.Timeout },
		GetFullConfigFunc:   func() *config.Config { return cfg },
	}
}

// testServer makes a server over a dataset mock returning snap
func testServer(t *testing.T, snap dataset.Snapshot) (*Server, *mocks.DatasetMock) {
	t.Helper()
	ds := &mocks.DatasetMock{
		CurrentFunc:    func() dataset.Snapshot { return snap },
		InvalidateFunc: func(ctx context.Context) dataset.Snapshot { return snap },
	}
	srv, err := New(configMock(":8080"), ds, palette.Default(), "1.2.3", false)
	require.NoError(t, err)
	return srv, ds
}

// do sends request through the router
func do(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestServer_New(t *testing.T) {
	srv, _ := testServer(t, okSnapshot(testTable()))
	assert.NotNil(t, srv.router)
	assert.NotNil(t, srv.templates.Lookup(templateIndex))
	assert.NotNil(t, srv.templates.Lookup(templateTable))

	t.Run("bad tooltip template", func(t *testing.T) {
		cfg := config.Default()
		cfg.Map.Tooltip = "{{.break_date"
		_, err := New(&mocks.ConfigProviderMock{GetFullConfigFunc: func() *config.Config { return cfg }},
			&mocks.DatasetMock{}, palette.Default(), "1.2.3", false)
		require.Error(t, err)
	})
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	ds := &mocks.DatasetMock{CurrentFunc: func() dataset.Snapshot { return okSnapshot(testTable()) }}
	srv, err := New(configMock(fmt.Sprintf("127.0.0.1:%d", port)), ds, palette.Default(), "1.0.0", false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// wait for server to start
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, time.Second, 10*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/columns", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "breakmap", resp.Header.Get("App-Name"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server didn't stop")
	}
}

func TestServer_statusHandler(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		srv, _ := testServer(t, okSnapshot(testTable()))
		w := do(srv, "GET", "/api/v1/status")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var status map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "ok", status["status"])
		assert.Equal(t, "1.2.3", status["version"])
		assert.Equal(t, "data/breaks.xml", status["path"])
		assert.InDelta(t, 3, status["rows"], 0)
		assert.InDelta(t, 7, status["columns"], 0)
		assert.Equal(t, true, status["geometry"])
		assert.Equal(t, "Water Main Breaks", status["feed"].(map[string]any)["title"])
	})

	t.Run("failed", func(t *testing.T) {
		srv, _ := testServer(t, errSnapshot())
		w := do(srv, "GET", "/api/v1/status")
		assert.Equal(t, http.StatusOK, w.Code)
		var status map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "error", status["status"])
		assert.Contains(t, status["error"], "data unavailable")
		assert.Equal(t, "unavailable", status["reason"])
	})
}

func TestServer_columnsHandler(t *testing.T) {
	srv, _ := testServer(t, okSnapshot(testTable()))
	w := do(srv, "GET", "/api/v1/columns")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Columns []string `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"break_date", "break_type", "status", "year", "point", "lon", "lat"}, resp.Columns)
}

func TestServer_tableJSONHandler(t *testing.T) {
	srv, _ := testServer(t, okSnapshot(testTable()))

	tests := []struct {
		name  string
		query string
		count int
	}{
		{name: "no filters", query: "", count: 3},
		{name: "single year", query: "?year=2021", count: 2},
		{name: "year and status", query: "?year=2021&status=Closed", count: 1},
		{name: "two years", query: "?year=2020&year=2021", count: 3},
		{name: "unknown value", query: "?year=1999", count: 0},
		{name: "not a filter column", query: "?break_type=AC", count: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, "GET", "/api/v1/table"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)
			var resp struct {
				Rows  []map[string]any `json:"rows"`
				Count int              `json:"count"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Rows, tt.count)
		})
	}

	t.Run("row values", func(t *testing.T) {
		w := do(srv, "GET", "/api/v1/table?status=Closed")
		var resp struct {
			Rows []map[string]any `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Rows, 2)
		assert.InDelta(t, -114.08, resp.Rows[0]["lon"], 1e-9)
		assert.InDelta(t, 51.05, resp.Rows[0]["lat"], 1e-9)
		assert.Nil(t, resp.Rows[1]["lon"], "row with empty point has no lon")
		assert.Equal(t, "CI", resp.Rows[1]["break_type"])
	})
}

func TestServer_filtersHandler(t *testing.T) {
	srv, _ := testServer(t, okSnapshot(testTable()))
	w := do(srv, "GET", "/api/v1/filters")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string][]string{"year": {"2020", "2021"}, "status": {"Closed", "Open"}}, resp)

	t.Run("filter column absent from table", func(t *testing.T) {
		tbl := &domain.Table{Columns: []string{"break_type"}, Rows: []domain.Row{{Record: domain.Record{"break_type": "AC"}}}}
		srv, _ := testServer(t, okSnapshot(tbl))
		w := do(srv, "GET", "/api/v1/filters")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{}`, w.Body.String())
	})
}

func TestServer_geojsonHandler(t *testing.T) {
	srv, _ := testServer(t, okSnapshot(testTable()))
	w := do(srv, "GET", "/api/v1/geojson")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Layer struct {
			Type     string `json:"type"`
			Features []struct {
				Geometry struct {
					Coordinates []float64 `json:"coordinates"`
				} `json:"geometry"`
				Properties map[string]any `json:"properties"`
			} `json:"features"`
		} `json:"layer"`
		Skipped int            `json:"skipped"`
		Radius  int            `json:"radius"`
		View    map[string]any `json:"view"`
		Message string         `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FeatureCollection", resp.Layer.Type)
	require.Len(t, resp.Layer.Features, 2)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 100, resp.Radius)
	assert.Empty(t, resp.Message)

	assert.Equal(t, []float64{-114.08, 51.05}, resp.Layer.Features[0].Geometry.Coordinates)
	assert.Equal(t, []any{255.0, 0.0, 0.0}, resp.Layer.Features[0].Properties["color"])
	assert.Equal(t, []any{0.0, 255.0, 0.0}, resp.Layer.Features[1].Properties["color"])
	assert.Contains(t, resp.Layer.Features[0].Properties["tooltip"], "<b>Type:</b> AC")

	assert.InDelta(t, 51.03, resp.View["latitude"], 1e-9)
	assert.InDelta(t, -114.1, resp.View["longitude"], 1e-9)
	assert.InDelta(t, 10, resp.View["zoom"], 0)
	assert.InDelta(t, 50, resp.View["pitch"], 0)

	t.Run("no geographic data", func(t *testing.T) {
		w := do(srv, "GET", "/api/v1/geojson?year=2021&status=Closed")
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "No geographic data available for visualization.", resp["message"])
		assert.NotContains(t, resp, "view")
	})
}

func TestServer_colorHandler(t *testing.T) {
	srv, _ := testServer(t, okSnapshot(testTable()))

	tests := []struct {
		value string
		color string
	}{
		{value: "AC", color: "[255,0,0]"},
		{value: "ACG", color: "[0,255,0]"},
		{value: "CI", color: "[0,0,255]"},
		{value: "ac", color: "[0,0,255]"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			w := do(srv, "GET", "/api/v1/color/"+tt.value)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"value":%q,"color":%s}`, tt.value, tt.color), w.Body.String())
		})
	}
}

func TestServer_reloadHandler(t *testing.T) {
	t.Run("reloaded", func(t *testing.T) {
		srv, ds := testServer(t, okSnapshot(testTable()))
		w := do(srv, "POST", "/api/v1/reload")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"reloaded","rows":3}`, w.Body.String())
		assert.Len(t, ds.InvalidateCalls(), 1)
	})

	t.Run("failed", func(t *testing.T) {
		srv, ds := testServer(t, errSnapshot())
		w := do(srv, "POST", "/api/v1/reload")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "data unavailable")
		assert.Len(t, ds.InvalidateCalls(), 1)
	})

	t.Run("get not allowed", func(t *testing.T) {
		srv, ds := testServer(t, okSnapshot(testTable()))
		w := do(srv, "GET", "/api/v1/reload")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Empty(t, ds.InvalidateCalls())
	})
}

func TestServer_DataUnavailable(t *testing.T) {
	srv, _ := testServer(t, errSnapshot())
	for _, path := range []string{"/api/v1/columns", "/api/v1/table", "/api/v1/filters", "/api/v1/geojson", "/rss"} {
		t.Run(path, func(t *testing.T) {
			w := do(srv, "GET", path)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, strings.HasPrefix(resp["error"], "data unavailable"), resp["error"])
		})
	}
}

func TestServer_indexHandler(t *testing.T) {
	t.Run("page with data", func(t *testing.T) {
		srv, _ := testServer(t, okSnapshot(testTable()))
		w := do(srv, "GET", "/?year=2021")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

		body := w.Body.String()
		assert.Contains(t, body, "<title>Calgary Water Main Breaks Visualization</title>")
		assert.Contains(t, body, `<select name="year" multiple`)
		assert.Contains(t, body, `<option value="2021" selected>2021</option>`)
		assert.Contains(t, body, `<option value="2020">2020</option>`)
		assert.Contains(t, body, `<select name="status" multiple`)
		assert.Contains(t, body, "2 of 3 breaks")
		assert.Contains(t, body, "<td>ACG</td>")
		assert.NotContains(t, body, "<td>AC</td>", "2020 row is filtered out")
		assert.Contains(t, body, "<code>break_date</code>")
		assert.NotContains(t, body, "No geographic data available")
	})

	t.Run("no geographic data", func(t *testing.T) {
		tbl := &domain.Table{Columns: []string{"year"}, Rows: []domain.Row{{Record: domain.Record{"year": "2020"}}}}
		srv, _ := testServer(t, okSnapshot(tbl))
		w := do(srv, "GET", "/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No geographic data available for visualization.")
	})

	t.Run("empty table", func(t *testing.T) {
		srv, _ := testServer(t, okSnapshot(&domain.Table{Columns: []string{}, Rows: []domain.Row{}}))
		w := do(srv, "GET", "/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "0 of 0 breaks")
		assert.Contains(t, w.Body.String(), "No geographic data available for visualization.")
	})

	t.Run("data not available", func(t *testing.T) {
		srv, _ := testServer(t, errSnapshot())
		w := do(srv, "GET", "/")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Failed to load data. Please check the file path or the file content.")
		assert.Contains(t, body, "data/missing.xml")
		assert.NotContains(t, body, `<select`)
	})

	t.Run("unknown path", func(t *testing.T) {
		srv, _ := testServer(t, okSnapshot(testTable()))
		w := do(srv, "GET", "/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_tableHandler(t *testing.T) {
	t.Run("filtered partial", func(t *testing.T) {
		srv, _ := testServer(t, okSnapshot(testTable()))
		w := do(srv, "GET", "/table?status=Open")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `<span id="row-count" hx-swap-oob="true">1 of 3 breaks</span>`)
		assert.Contains(t, body, "<td>ACG</td>")
		assert.NotContains(t, body, "<td>CI</td>")
		assert.NotContains(t, body, "<html")
	})

	t.Run("data not available", func(t *testing.T) {
		srv, _ := testServer(t, errSnapshot())
		w := do(srv, "GET", "/table")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to load data.")
	})
}

func TestServer_metrics(t *testing.T) {
	srv, _ := testServer(t, okSnapshot(testTable()))
	w := do(srv, "GET", "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRenderError(t *testing.T) {
	w := httptest.NewRecorder()
	renderError(w, httptest.NewRequest("GET", "/", http.NoBody), errors.New("boom"), http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())

	w = httptest.NewRecorder()
	renderError(w, httptest.NewRequest("GET", "/", http.NoBody), nil, http.StatusInternalServerError)
	assert.JSONEq(t, `{"error":"unknown error"}`, w.Body.String())
}
