// Package internal holds helpers shared by the document store drivers.
package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sagarc03/bluelist"
)

// TimeFormat is a fixed-width UTC layout so stored timestamps sort lexically.
const TimeFormat = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// EncodeFields serializes a payload for storage. The identifier is never
// stored inside the payload.
func EncodeFields(fields map[string]any) ([]byte, error) {
	data, err := json.Marshal(bluelist.StripID(fields))
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

// DecodeFields parses a stored payload. An empty document decodes to an
// empty map. Numbers decode as json.Number.
func DecodeFields(data []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(data) == 0 {
		return fields, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Collect appends rec to out when it matches filter and reports whether the
// caller should keep scanning. A limit of 0 means no limit.
func Collect(out []bluelist.Record, rec bluelist.Record, filter bluelist.Filter, limit int) ([]bluelist.Record, bool) {
	if !filter.Matches(rec) {
		return out, true
	}
	out = append(out, rec)
	return out, limit == 0 || len(out) < limit
}
