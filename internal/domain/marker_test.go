package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarker(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	p := Plaque{Title: "Test", Easting: 430000, Northing: 433000}
	m := NewMarker(0, p, LatLng{Lat: 53.8, Lng: -1.55}, "<div>Test</div>")

	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", m.Title)
	assert.Equal(t, p, m.Plaque)
	assert.Equal(t, fakeClock.Now(), m.PlacedAt)
}

func TestMarkerID_DeterministicAndIndexScoped(t *testing.T) {
	p := Plaque{Title: "Twin", Easting: 430000, Northing: 433000}

	assert.Equal(t, markerID(3, p), markerID(3, p))
	assert.NotEqual(t, markerID(3, p), markerID(4, p), "duplicate records keep distinct IDs")
}

func TestTally_Total(t *testing.T) {
	assert.Equal(t, 5, Tally{Valid: 3, Invalid: 2}.Total())
}
