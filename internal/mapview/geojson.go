package mapview

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

// FeatureCollection converts markers to GeoJSON Point features ([lng, lat]).
func FeatureCollection(markers []domain.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewPointFeature([]float64{m.Position.Lng, m.Position.Lat})
		f.ID = m.ID
		f.SetProperty("title", m.Title)
		f.SetProperty("popup", m.Popup)
		f.SetProperty("easting", m.Plaque.Easting)
		f.SetProperty("northing", m.Plaque.Northing)
		if m.Plaque.Location != "" {
			f.SetProperty("location", m.Plaque.Location)
		}
		if m.Plaque.Date != "" {
			f.SetProperty("date", m.Plaque.Date)
		}
		if m.Address != "" {
			f.SetProperty("address", m.Address)
		}
		if m.GeoSource != "" {
			f.SetProperty("geo_source", m.GeoSource)
		}
		fc.AddFeature(f)
	}
	return fc
}
