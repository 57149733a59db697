package mapview

import (
	"fmt"
	"html/template"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

// StatusLoading is shown before the session has initialized.
const StatusLoading template.HTML = "Loading blue plaques..."

// SummaryStatus renders the valid/invalid counts shown under the map.
func SummaryStatus(t domain.Tally) template.HTML {
	return template.HTML(fmt.Sprintf(
		"Displaying <strong>%d</strong> blue plaques on the map.<br>"+
			"<small>%d plaques could not be displayed due to missing coordinate data.</small>",
		t.Valid, t.Invalid))
}

// InitErrorStatus renders a map construction failure.
func InitErrorStatus(err error) template.HTML {
	return template.HTML("<strong style='color:red'>Error initializing map: " +
		template.HTMLEscapeString(err.Error()) + "</strong>")
}

// DatasetErrorStatus renders a missing dataset.
func DatasetErrorStatus(name string) template.HTML {
	if name == "" {
		name = "dataset"
	}
	return template.HTML("<strong style='color:red'>Error: Data file " +
		template.HTMLEscapeString(name) + " not loaded!</strong>")
}
