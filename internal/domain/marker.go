package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// markerNamespace scopes name-based marker UUIDs.
var markerNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/couchcryptid/blue-plaque-map/markers"))

// PopupMaxWidth is the popup width limit in pixels.
const PopupMaxWidth = 450

// Marker is one placed plaque on the map host. Markers are not mutated after
// registration.
type Marker struct {
	ID       string `json:"id"`
	Index    int    `json:"index"`
	Position LatLng `json:"position"`
	Title    string `json:"title"`
	Popup    string `json:"popup"`
	Plaque   Plaque `json:"plaque"`

	// Reverse geocoding enrichment fields.
	Address       string  `json:"address,omitempty"`
	PlaceName     string  `json:"place_name,omitempty"`
	GeoConfidence float64 `json:"geo_confidence,omitempty"`
	GeoSource     string  `json:"geo_source,omitempty"` // "reverse", "original", "failed"

	PlacedAt time.Time `json:"placed_at"`
}

// NewMarker builds the marker for the dataset record at index.
func NewMarker(index int, p Plaque, pos LatLng, popup string) Marker {
	return Marker{
		ID:       markerID(index, p),
		Index:    index,
		Position: pos,
		Title:    p.Title,
		Popup:    popup,
		Plaque:   p,
		PlacedAt: clock.Now().UTC(),
	}
}

func markerID(index int, p Plaque) string {
	name := fmt.Sprintf("%d|%s|%.3f|%.3f", index, p.Title, p.Easting, p.Northing)
	return uuid.NewSHA1(markerNamespace, []byte(name)).String()
}

// Tally counts placed and rejected records from one population pass.
type Tally struct {
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Total is the number of records seen.
func (t Tally) Total() int { return t.Valid + t.Invalid }
