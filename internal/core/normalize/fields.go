package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// dateLayouts are tried in order. Layouts without a zone parse as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// fields reads one raw record and files a Diagnostic for every value it
// has to discard.
type fields struct {
	index int
	rec   domain.RawRecord
	diags *[]Diagnostic
}

func (f fields) note(field string, raw any, reason string) {
	*f.diags = append(*f.diags, Diagnostic{
		Record: f.index,
		Field:  field,
		Raw:    textValue(raw),
		Reason: reason,
	})
}

// lookup treats blank strings as absent.
func (f fields) lookup(keys ...string) (any, string, bool) {
	v, key, ok := f.rec.Lookup(keys...)
	if !ok {
		return nil, "", false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, "", false
	}
	return v, key, true
}

func (f fields) text(keys ...string) string {
	v, _, ok := f.lookup(keys...)
	if !ok {
		return ""
	}
	return textValue(v)
}

func (f fields) keep(id string, seen map[string]struct{}, field string) bool {
	if id == "" {
		f.note(field, "", "missing identifier, record dropped")
		return false
	}
	if _, dup := seen[id]; dup {
		f.note(field, id, "duplicate identifier, first occurrence kept")
		return false
	}
	seen[id] = struct{}{}
	return true
}

func (f fields) date(keys ...string) *time.Time {
	v, key, ok := f.lookup(keys...)
	if !ok {
		return nil
	}
	t, ok := parseTime(v)
	if !ok {
		f.note(key, v, "unparseable date, stored as null")
		return nil
	}
	return &t
}

func (f fields) bounded(lo, hi int64, keys ...string) int64 {
	v, key, ok := f.lookup(keys...)
	if !ok {
		return 0
	}
	n, ok := parseInt(v)
	if !ok {
		f.note(key, v, "not an integer, stored as 0")
		return 0
	}
	if n < lo || n > hi {
		f.note(key, v, fmt.Sprintf("out of range [%d,%d], clamped", lo, hi))
		return min(max(n, lo), hi)
	}
	return n
}

func (f fields) count(keys ...string) int64 {
	return f.bounded(0, math.MaxInt64, keys...)
}

// durationMs prefers duration_ms and falls back to duration_s scaled to
// milliseconds.
func (f fields) durationMs() int64 {
	if _, _, ok := f.lookup("duration_ms"); ok {
		return f.count("duration_ms")
	}
	v, key, ok := f.lookup("duration_s")
	if !ok {
		return 0
	}
	secs, ok := parseFloat(v)
	if !ok || secs < 0 {
		f.note(key, v, "invalid duration, stored as 0")
		return 0
	}
	return int64(math.Round(secs * 1000))
}

func (f fields) region(keys ...string) string {
	region := strings.ToUpper(f.text(keys...))
	if region == "" {
		return domain.UnknownRegion
	}
	return region
}

func (f fields) artists(keys ...string) []string {
	v, key, ok := f.lookup(keys...)
	if !ok {
		return nil
	}
	names, ok := parseArtists(v)
	if !ok {
		f.note(key, v, "unreadable artist list, stored as []")
		return nil
	}
	return names
}

func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// parseInt accepts integer kinds, integral floats and their string forms.
func parseInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint32:
		return int64(x), true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n, true
		}
	}

	f, ok := parseFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseTime accepts time values, the layouts in dateLayouts and bare
// numeric years.
func parseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return x.UTC(), !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	}

	year, ok := parseInt(v)
	if !ok || year < 1000 || year > 9999 {
		return time.Time{}, false
	}
	return time.Date(int(year), time.January, 1, 0, 0, 0, 0, time.UTC), true
}

// parseArtists accepts string slices, decoded JSON arrays of names or
// {"name": ...} objects, JSON array strings and comma-separated strings.
func parseArtists(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return cleanNames(x), true
	case []any:
		names := make([]string, 0, len(x))
		for _, item := range x {
			switch a := item.(type) {
			case string:
				names = append(names, a)
			case map[string]any:
				names = append(names, textValue(a["name"]))
			default:
				return nil, false
			}
		}
		return cleanNames(names), true
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") {
			var names []string
			if err := json.Unmarshal([]byte(s), &names); err != nil {
				return nil, false
			}
			return cleanNames(names), true
		}
		return cleanNames(strings.Split(s, ",")), true
	}
	return nil, false
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// encodeArtists renders names as a compact JSON array; no names encode as
// "[]".
func encodeArtists(names []string) string {
	if len(names) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
