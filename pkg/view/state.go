package view

import "github.com/umputun/breakmap/pkg/domain"

// NoGeoMessage is shown instead of the map when no row has coordinates
const NoGeoMessage = "No geographic data available for visualization."

// State is the initial map camera
type State struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
}

// ViewState centers the map at the mean position of rows with coordinates.
// ok is false when there is nothing to show on the map.
func ViewState(t *domain.Table, zoom, pitch float64) (State, bool) {
	var sumLat, sumLon float64
	count := 0
	for _, row := range t.Rows {
		if !row.HasCoordinates() {
			continue
		}
		sumLat += *row.Lat
		sumLon += *row.Lon
		count++
	}
	if count == 0 {
		return State{}, false
	}
	return State{
		Latitude:  sumLat / float64(count),
		Longitude: sumLon / float64(count),
		Zoom:      zoom,
		Pitch:     pitch,
	}, true
}
