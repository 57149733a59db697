package httpadapter

import (
	"encoding/json"
	"time"

	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
)

type statusResponse struct {
	State       string          `json:"state"`
	ElementID   string          `json:"element_id,omitempty"`
	Status      string          `json:"status"`
	Valid       int             `json:"valid"`
	Invalid     int             `json:"invalid"`
	Markers     int             `json:"markers"`
	PopulatedAt *time.Time      `json:"populated_at,omitempty"`
	Features    json.RawMessage `json:"features,omitempty"`
}

func newStatusResponse(snap mapview.Snapshot) statusResponse {
	resp := statusResponse{
		State:     snap.State.String(),
		ElementID: snap.ElementID,
		Status:    string(snap.Status),
		Valid:     snap.Tally.Valid,
		Invalid:   snap.Tally.Invalid,
		Markers:   len(snap.Markers),
	}
	if !snap.PopulatedAt.IsZero() {
		t := snap.PopulatedAt
		resp.PopulatedAt = &t
	}
	if fc, err := mapview.FeatureCollection(snap.Markers).MarshalJSON(); err == nil {
		resp.Features = fc
	}
	return resp
}
