package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaque_UnmarshalJSON_OriginalDatasetShape(t *testing.T) {
	data := []byte(`{
		"title": "Arthur Ransome",
		"location": "Hyde Park Corner",
		"unveiler": "Private unveiling",
		"date": 1988,
		"sponser": "Arthur Ransome Society",
		"caption": "Not found",
		"easting": 429170,
		"northing": "435071"
	}`)

	var p Plaque
	require.NoError(t, json.Unmarshal(data, &p))

	want := Plaque{
		Title:    "Arthur Ransome",
		Location: "Hyde Park Corner",
		Unveiler: PrivateUnveiling,
		Date:     "1988",
		Sponsor:  "Arthur Ransome Society",
		Caption:  CaptionNotFound,
		Easting:  429170,
		Northing: 435071,
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("plaque mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaque_UnmarshalJSON_SponsorSpellingWins(t *testing.T) {
	var p Plaque
	require.NoError(t, json.Unmarshal([]byte(`{"sponsor":"Correct","sponser":"Typo"}`), &p))
	assert.Equal(t, "Correct", p.Sponsor)
}

func TestPlaque_UnmarshalJSON_NullAndGarbageCoordinates(t *testing.T) {
	var p Plaque
	require.NoError(t, json.Unmarshal([]byte(`{"title":null,"easting":null,"northing":"n/a"}`), &p))
	assert.Empty(t, p.Title)
	assert.Zero(t, p.Easting)
	assert.Zero(t, p.Northing)
	assert.False(t, p.HasCoordinates())
}

func TestPlaque_UnmarshalJSON_Invalid(t *testing.T) {
	var p Plaque
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &p))
}

func TestPlaqueFromFields_CaseInsensitiveKeys(t *testing.T) {
	p := PlaqueFromFields(map[string]any{
		" Title ":  "Test",
		"EASTING":  430000,
		"Northing": 433000.0,
	})
	assert.Equal(t, "Test", p.Title)
	assert.Equal(t, 430000.0, p.Easting)
	assert.Equal(t, 433000.0, p.Northing)
}

func TestPlaque_HasCoordinates(t *testing.T) {
	tests := []struct {
		name string
		p    Plaque
		want bool
	}{
		{"both present", Plaque{Easting: 430000, Northing: 433000}, true},
		{"zero easting", Plaque{Easting: 0, Northing: 433000}, false},
		{"zero northing", Plaque{Easting: 430000}, false},
		{"both absent", Plaque{}, false},
		{"NaN easting", Plaque{Easting: math.NaN(), Northing: 433000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.HasCoordinates())
		})
	}
}
