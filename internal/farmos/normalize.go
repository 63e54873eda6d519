package farmos

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Normalisation helpers for JSON:API documents. Built on gjson so they
// are total: any well-formed JSON input produces a result, and missing
// fields or unresolvable references degrade to zero values or raw ids
// instead of failing the tool call.

// Ref is a flattened relationship reference. Name is filled in when the
// referenced resource was sideloaded in the document's included array;
// otherwise the raw {type, id} pair is kept as-is.
type Ref struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Bundle strips the entity prefix from a JSON:API type, e.g.
// "log--activity" becomes "activity".
func Bundle(t string) string {
	if i := strings.Index(t, "--"); i >= 0 {
		return t[i+2:]
	}

	return t
}

// Refs extracts references from a relationship data field, which may be
// a single object, an array, or null.
func Refs(relData gjson.Result) []Ref {
	var items []gjson.Result

	switch {
	case relData.IsArray():
		items = relData.Array()
	case relData.IsObject():
		items = []gjson.Result{relData}
	default:
		return nil
	}

	var refs []Ref

	for _, r := range items {
		id := r.Get("id").Str
		if id == "" {
			continue
		}

		refs = append(refs, Ref{ID: id, Type: Bundle(r.Get("type").Str)})
	}

	return refs
}

// Included indexes a document's sideloaded resources by id.
type Included map[string]gjson.Result

// IndexIncluded builds the id lookup for a document's included array.
func IndexIncluded(doc gjson.Result) Included {
	inc := Included{}

	for _, r := range doc.Get("included").Array() {
		if id := r.Get("id").Str; id != "" {
			inc[id] = r
		}
	}

	return inc
}

// Resolve fills in the Name of each ref whose resource appears in the
// included set. Unresolved refs keep their raw {type, id} form.
func (inc Included) Resolve(refs []Ref) []Ref {
	for i, ref := range refs {
		if r, ok := inc[ref.ID]; ok {
			refs[i].Name = r.Get("attributes.name").Str
		}
	}

	return refs
}

// Text extracts a Drupal formatted-text field, which arrives either as
// {"value": "...", "format": "..."} or as a plain string. Returns nil
// for absent fields.
func Text(v gjson.Result) *string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return nil
	case v.IsObject():
		s := v.Get("value").Str
		return &s
	default:
		s := v.String()
		return &s
	}
}

// EpochToISO converts a Unix timestamp field to an ISO-8601 UTC string.
// Non-numeric values are passed through as their string form rather than
// dropped, matching the degrade-gracefully contract.
func EpochToISO(v gjson.Result) *string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}

	if v.Type == gjson.Number {
		s := time.Unix(v.Int(), 0).UTC().Format(time.RFC3339)
		return &s
	}

	s := v.String()

	return &s
}

// ISOToEpoch parses an ISO-8601 datetime (or bare date, taken as start
// of day UTC) into Unix seconds.
func ISOToEpoch(s string) (int64, error) {
	t, err := ParseISO(s)
	if err != nil {
		return 0, err
	}

	return t.Unix(), nil
}

// ParseISO parses an ISO-8601 datetime, padding bare dates to midnight UTC.
func ParseISO(s string) (time.Time, error) {
	if !strings.Contains(s, "T") {
		s += "T00:00:00Z"
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO 8601 datetime %q", s)
	}

	return t, nil
}
