package ikuai

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The router's JSON is loosely typed: the same field may arrive as a number,
// a numeric string or be missing entirely. These accessors never fail; absent
// or mistyped values yield the zero value and ok=false.

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func getString(m map[string]any, key string) string {
	return asString(m[key])
}

func getFloat(m map[string]any, key string) float64 {
	f, _ := asFloat(m[key])
	return f
}

func getInt(m map[string]any, key string) int {
	i, _ := asInt(m[key])
	return i
}

func getInt64(m map[string]any, key string) int64 {
	f, _ := asFloat(m[key])
	return int64(f)
}

func getMap(m map[string]any, key string) map[string]any {
	return asMap(m[key])
}

// getObjects returns the elements of the list at key that are objects.
func getObjects(m map[string]any, key string) []map[string]any {
	var out []map[string]any
	for _, item := range asSlice(m[key]) {
		if obj := asMap(item); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// firstString returns the first element of the list at key as a string, or the
// value itself when it is a scalar.
func firstString(m map[string]any, key string) string {
	if list := asSlice(m[key]); list != nil {
		if len(list) == 0 {
			return ""
		}
		return asString(list[0])
	}
	return asString(m[key])
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// equalValues compares two loosely-typed JSON/config values. Numbers compare by
// value regardless of representation, so 1 (TOML int64), 1.0 (JSON float64)
// and "1" all match.
func equalValues(a, b any) bool {
	af, aNum := numeric(a)
	bf, bNum := numeric(b)
	if aNum && bNum {
		_, aStr := a.(string)
		_, bStr := b.(string)
		if !aStr || !bStr {
			return af == bf
		}
	}
	switch av := a.(type) {
	case string:
		bs, ok := b.(string)
		return ok && av == bs
	case bool:
		bb, ok := b.(bool)
		return ok && av == bb
	case nil:
		return b == nil
	}
	return false
}

func numeric(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return asFloat(v)
}
