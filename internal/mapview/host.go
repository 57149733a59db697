package mapview

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

var (
	// ErrInvalidOptions is returned when a host cannot be built from its options.
	ErrInvalidOptions = errors.New("invalid map options")
	// ErrInvalidMarker is returned when a marker cannot be registered.
	ErrInvalidMarker = errors.New("invalid marker")
)

// TileLayer describes the base imagery layer.
type TileLayer struct {
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
	MinZoom     int    `json:"min_zoom"`
	MaxZoom     int    `json:"max_zoom"`
}

// ScaleControl describes the map scale bar.
type ScaleControl struct {
	Imperial bool `json:"imperial"`
	Metric   bool `json:"metric"`
}

// Icon describes the marker image and its pixel geometry.
type Icon struct {
	IconURL     string `json:"icon_url"`
	ShadowURL   string `json:"shadow_url"`
	IconSize    [2]int `json:"icon_size"`
	IconAnchor  [2]int `json:"icon_anchor"`
	PopupAnchor [2]int `json:"popup_anchor"`
	ShadowSize  [2]int `json:"shadow_size"`
}

// Options configures a map host.
type Options struct {
	Center        domain.LatLng `json:"center"`
	Zoom          int           `json:"zoom"`
	ZoomControl   bool          `json:"zoom_control"`
	Tiles         TileLayer     `json:"tiles"`
	Scale         ScaleControl  `json:"scale"`
	Icon          Icon          `json:"icon"`
	PopupMaxWidth int           `json:"popup_max_width"`
}

// DefaultOptions centres the map on Leeds with OpenStreetMap tiles and the blue plaque icon.
func DefaultOptions() Options {
	return Options{
		Center:      domain.LatLng{Lat: 53.8008, Lng: -1.5491},
		Zoom:        13,
		ZoomControl: true,
		Tiles: TileLayer{
			URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors",
			MinZoom:     10,
			MaxZoom:     19,
		},
		Scale: ScaleControl{Imperial: true, Metric: true},
		Icon: Icon{
			IconURL:     "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-2x-blue.png",
			ShadowURL:   "https://cdnjs.cloudflare.com/ajax/libs/leaflet/1.9.4/images/marker-shadow.png",
			IconSize:    [2]int{25, 41},
			IconAnchor:  [2]int{12, 41},
			PopupAnchor: [2]int{1, -34},
			ShadowSize:  [2]int{41, 41},
		},
		PopupMaxWidth: domain.PopupMaxWidth,
	}
}

// Validate checks that a host can be built from o.
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Center.Lat) || math.IsNaN(o.Center.Lng) ||
		o.Center.Lat < -90 || o.Center.Lat > 90 || o.Center.Lng < -180 || o.Center.Lng > 180:
		return fmt.Errorf("%w: center %v,%v", ErrInvalidOptions, o.Center.Lat, o.Center.Lng)
	case o.Tiles.URLTemplate == "":
		return fmt.Errorf("%w: tile layer URL template is empty", ErrInvalidOptions)
	case o.Tiles.MinZoom < 0 || o.Tiles.MinZoom > o.Tiles.MaxZoom:
		return fmt.Errorf("%w: zoom bounds %d..%d", ErrInvalidOptions, o.Tiles.MinZoom, o.Tiles.MaxZoom)
	case o.Zoom < o.Tiles.MinZoom || o.Zoom > o.Tiles.MaxZoom:
		return fmt.Errorf("%w: zoom %d outside %d..%d", ErrInvalidOptions, o.Zoom, o.Tiles.MinZoom, o.Tiles.MaxZoom)
	case o.Icon.IconURL == "":
		return fmt.Errorf("%w: icon URL is empty", ErrInvalidOptions)
	}
	return nil
}

// Host is the map viewport and its markers. Markers are only ever appended.
type Host struct {
	elementID string
	opts      Options

	mu      sync.RWMutex
	markers []domain.Marker
	ids     map[string]struct{}
	resizes int
}

// NewHost builds a host bound to the page element elementID.
func NewHost(elementID string, opts Options) (*Host, error) {
	if elementID == "" {
		return nil, fmt.Errorf("%w: host element id is empty", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Host{
		elementID: elementID,
		opts:      opts,
		ids:       make(map[string]struct{}),
	}, nil
}

// AddMarker registers m with the host.
func (h *Host) AddMarker(m domain.Marker) error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMarker)
	}
	if !m.Position.Valid() || math.Abs(m.Position.Lat) > 90 || math.Abs(m.Position.Lng) > 180 {
		return fmt.Errorf("%w: position %v,%v", ErrInvalidMarker, m.Position.Lat, m.Position.Lng)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.ids[m.ID]; ok {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidMarker, m.ID)
	}
	h.ids[m.ID] = struct{}{}
	h.markers = append(h.markers, m)
	return nil
}

// Markers returns a copy of the registered markers in registration order.
func (h *Host) Markers() []domain.Marker {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.Marker, len(h.markers))
	copy(out, h.markers)
	return out
}

// MarkerCount returns the number of registered markers.
func (h *Host) MarkerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.markers)
}

// Resize fits the viewport to its container. It never changes markers or options.
func (h *Host) Resize() {
	h.mu.Lock()
	h.resizes++
	h.mu.Unlock()
}

// Resizes returns how many times Resize was called.
func (h *Host) Resizes() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.resizes
}

func (h *Host) ElementID() string { return h.elementID }
func (h *Host) Options() Options  { return h.opts }
