package domain

import (
	"html/template"
	"strings"
)

// DefaultSearchLocality is appended to plaque titles in search links.
const DefaultSearchLocality = "Leeds"

const searchBaseURL = "https://www.google.com/search?q="

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="popup-title">{{.Title}}</div>` +
		`{{if .Location}}<div class="popup-location">{{.Location}}</div>{{end}}` +
		`<table class="popup-info-table">` +
		`{{if .Unveiler}}<tr><td class="popup-info-label">Unveiled by</td><td class="popup-info-value">{{.Unveiler}}</td></tr>{{end}}` +
		`{{if .Date}}<tr><td class="popup-info-label">Date</td><td class="popup-info-value">{{.Date}}</td></tr>{{end}}` +
		`{{if .Sponsor}}<tr><td class="popup-info-label">Sponsor</td><td class="popup-info-value">{{.Sponsor}}</td></tr>{{end}}` +
		`</table>` +
		`{{if .Caption}}<div class="popup-caption"><div class="popup-caption-title">What it Says</div>{{.Caption}}</div>{{end}}` +
		`<a href="{{.SearchURL}}" target="_blank" class="popup-link">Learn More Online</a>`,
))

type popupView struct {
	Title     string
	Location  string
	Unveiler  string
	Date      string
	Sponsor   string
	Caption   string
	SearchURL template.URL
}

// PopupFormatter renders plaque popup markup.
type PopupFormatter struct {
	Locality string
}

// NewPopupFormatter returns a formatter whose search links end with locality.
// An empty locality falls back to DefaultSearchLocality.
func NewPopupFormatter(locality string) PopupFormatter {
	if locality == "" {
		locality = DefaultSearchLocality
	}
	return PopupFormatter{Locality: locality}
}

// Format renders the popup for p. Field values are HTML-escaped.
func (f PopupFormatter) Format(p Plaque) string {
	view := popupView{
		Title:     p.Title,
		Location:  p.Location,
		Date:      p.Date,
		Sponsor:   p.Sponsor,
		SearchURL: template.URL(SearchURL(p.Title, f.Locality)),
	}
	if p.Unveiler != PrivateUnveiling {
		view.Unveiler = p.Unveiler
	}
	if p.Caption != CaptionNotFound {
		view.Caption = p.Caption
	}

	var b strings.Builder
	if err := popupTemplate.Execute(&b, view); err != nil {
		return `<div class="popup-title">` + template.HTMLEscapeString(p.Title) + `</div>`
	}
	return b.String()
}

// SearchURL builds the "Learn More Online" link for a title.
func SearchURL(title, locality string) string {
	return searchBaseURL + encodeURIComponent(title+" "+locality)
}

const upperHex = "0123456789ABCDEF"

// encodeURIComponent percent-encodes the UTF-8 bytes of s, leaving the
// same unreserved set as the browser function: letters, digits and -_.!~*'().
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func uriUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
