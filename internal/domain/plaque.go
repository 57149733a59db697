package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel field values that suppress popup content.
const (
	PrivateUnveiling = "Private unveiling"
	CaptionNotFound  = "Not found"
)

// Plaque is one commemorative plaque record from the dataset.
type Plaque struct {
	Title    string  `json:"title,omitempty" yaml:"title,omitempty"`
	Location string  `json:"location,omitempty" yaml:"location,omitempty"`
	Unveiler string  `json:"unveiler,omitempty" yaml:"unveiler,omitempty"`
	Date     string  `json:"date,omitempty" yaml:"date,omitempty"`
	Sponsor  string  `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`
	Caption  string  `json:"caption,omitempty" yaml:"caption,omitempty"`
	Easting  float64 `json:"easting,omitempty" yaml:"easting,omitempty"`
	Northing float64 `json:"northing,omitempty" yaml:"northing,omitempty"`
}

// HasCoordinates reports whether both grid coordinates are present and non-zero.
func (p Plaque) HasCoordinates() bool {
	return isUsable(p.Easting) && isUsable(p.Northing)
}

func isUsable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PlaqueFromFields builds a Plaque from a loosely typed field map as produced
// by JSON, YAML and CSV decoders. Keys are matched case-insensitively.
// Unparseable coordinates decode as zero, which marks the record unplaceable.
func PlaqueFromFields(fields map[string]any) Plaque {
	norm := make(map[string]any, len(fields))
	for k, v := range fields {
		norm[strings.ToLower(strings.TrimSpace(k))] = v
	}

	sponsor := fieldString(norm["sponsor"])
	if sponsor == "" {
		sponsor = fieldString(norm["sponser"])
	}

	return Plaque{
		Title:    fieldString(norm["title"]),
		Location: fieldString(norm["location"]),
		Unveiler: fieldString(norm["unveiler"]),
		Date:     fieldString(norm["date"]),
		Sponsor:  sponsor,
		Caption:  fieldString(norm["caption"]),
		Easting:  fieldFloat(norm["easting"]),
		Northing: fieldFloat(norm["northing"]),
	}
}

// UnmarshalJSON accepts numbers or strings for any field and the "sponser" alias.
func (p *Plaque) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("decode plaque: %w", err)
	}
	*p = PlaqueFromFields(fields)
	return nil
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func fieldFloat(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
