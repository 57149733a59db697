package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

func decodeJSON(data []byte) ([]domain.Plaque, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func decodeYAML(data []byte) ([]domain.Plaque, error) {
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// decodeCSV reads a headed CSV file. Council exports are often Latin-1, so
// input that is not valid UTF-8 is transcoded first.
func decodeCSV(data []byte) ([]domain.Plaque, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("transcode latin1: %w", err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []domain.Plaque
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		fields := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(rec) {
				fields[name] = rec[i]
			}
		}
		out = append(out, domain.PlaqueFromFields(fields))
	}
	return out, nil
}

// decodeScript extracts the array literal from a `var osmarkers = [...];`
// data script. The literal is parsed as YAML flow syntax, which accepts both
// JSON and unquoted object keys.
func decodeScript(data []byte) ([]domain.Plaque, error) {
	start := bytes.IndexByte(data, '[')
	end := bytes.LastIndexByte(data, ']')
	if start < 0 || end < start {
		return nil, errors.New("no array literal in data script")
	}
	return decodeYAML(data[start : end+1])
}

func fromRows(rows []map[string]any) []domain.Plaque {
	out := make([]domain.Plaque, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PlaqueFromFields(row))
	}
	return out
}
