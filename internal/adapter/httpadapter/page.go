package httpadapter

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// DefaultPageTitle is used when no title is given.
const DefaultPageTitle = "Leeds Blue Plaques"

type pageData struct {
	Title     string
	ElementID string
	Status    template.HTML
	Options   mapview.Options
	Features  json.RawMessage
	Live      bool
}

// RenderPage writes the map page for snap. A live page subscribes to /ws for
// updates; a static page only shows the markers embedded in it.
func RenderPage(w io.Writer, title string, snap mapview.Snapshot, live bool) error {
	if title == "" {
		title = DefaultPageTitle
	}
	elementID := snap.ElementID
	if elementID == "" {
		elementID = "map"
	}
	status := snap.Status
	if status == "" {
		status = mapview.StatusLoading
	}

	features, err := mapview.FeatureCollection(snap.Markers).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}

	data := pageData{
		Title:     title,
		ElementID: elementID,
		Status:    status,
		Options:   snap.Options,
		Features:  features,
		Live:      live,
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
