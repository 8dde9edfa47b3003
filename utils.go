package bluelist

import (
	"encoding/json"
	"reflect"
)

// CloneFields returns a deep copy of a payload so the caller's map and any
// nested maps or slices are never shared with the backend.
func CloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return CloneFields(tv)
	case []any:
		s := make([]any, len(tv))
		for i, e := range tv {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// StripID removes a caller-supplied identifier from a payload. Identifiers
// are owned by the store.
func StripID(fields map[string]any) map[string]any {
	out := CloneFields(fields)
	delete(out, IDField)
	return out
}

// MergeFields applies patch on top of base (top-level keys, last write wins)
// and returns a new map.
func MergeFields(base, patch map[string]any) map[string]any {
	out := CloneFields(base)
	for k, v := range StripID(patch) {
		out[k] = v
	}
	return out
}

// Matches reports whether r satisfies every condition in f.
func (f Filter) Matches(r Record) bool {
	for k, want := range f {
		if k == IDField {
			id, ok := want.(string)
			if !ok || id != r.ID {
				return false
			}
			continue
		}
		got, ok := r.Fields[k]
		if !ok || !equalJSON(got, want) {
			return false
		}
	}
	return true
}

// FieldConditions returns the filter without its identifier condition.
func (f Filter) FieldConditions() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		if k != IDField {
			out[k] = v
		}
	}
	return out
}

// IDCondition returns the identifier the filter pins, if any.
func (f Filter) IDCondition() (string, bool) {
	v, ok := f[IDField]
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// equalJSON compares two values by their JSON encoding so that a stored
// json.Number compares equal to the same int or float written by a caller.
func equalJSON(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
