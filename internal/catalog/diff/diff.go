package diff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field comparison untuk dirty-tracking di editor produk.
// Backend kadang kirim angka sebagai string, null vs "", dan array kategori
// dengan urutan beda — strict equality bikin false dirty, jadi semua
// perbandingan lewat normalisasi di sini.

// StructuralFields are excluded from the dirty count. Media punya
// perbandingan sendiri (set compare, buang entry falsy).
var StructuralFields = map[string]bool{
	"site_code": true,
	"parent_id": true,
	"media_ids": true,
}

// Normalize collapses "no value" representations (nil, empty string) to nil.
func Normalize(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return v
}

// Equal compares two field values with type-aware coercion:
// arrays as sets, numbers as numbers, booleans as truthiness,
// everything else as trimmed strings.
func Equal(a, b interface{}) bool {
	a = Normalize(a)
	b = Normalize(b)

	if a == nil && b == nil {
		return true
	}

	aArr, aIsArr := toSlice(a)
	bArr, bIsArr := toSlice(b)
	if aIsArr && bIsArr {
		return equalAsSets(aArr, bArr)
	}
	if aIsArr != bIsArr {
		return false
	}

	if isNumber(a) || isNumber(b) {
		return toNumber(a) == toNumber(b)
	}

	if isBool(a) || isBool(b) {
		return truthy(a) == truthy(b)
	}

	return strings.TrimSpace(stringify(a)) == strings.TrimSpace(stringify(b))
}

// IsDirty reports whether a field's current value differs from its baseline.
func IsDirty(field string, current, baseline interface{}) bool {
	_ = field // per-field override belum dibutuhkan, media lewat EqualIDSet
	return !Equal(current, baseline)
}

// CountDirty counts changed fields against the baseline snapshot, skipping
// structural fields. Keys that exist on either side are considered.
func CountDirty(current, baseline map[string]interface{}) int {
	n := 0
	seen := map[string]bool{}
	for k, v := range current {
		if StructuralFields[k] {
			continue
		}
		seen[k] = true
		if IsDirty(k, v, baseline[k]) {
			n++
		}
	}
	for k, v := range baseline {
		if StructuralFields[k] || seen[k] {
			continue
		}
		if IsDirty(k, current[k], v) {
			n++
		}
	}
	return n
}

// EqualIDSet compares two ID lists as sets, ignoring order, duplicates and
// falsy entries (0). Dipakai untuk media gallery dan kategori.
func EqualIDSet(a, b []int64) bool {
	return equalStringSets(idStrings(a), idStrings(b))
}

func idStrings(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}

func equalAsSets(a, b []interface{}) bool {
	as := make([]string, 0, len(a))
	bs := make([]string, 0, len(b))
	for _, v := range a {
		if Normalize(v) == nil {
			continue
		}
		as = append(as, stringify(v))
	}
	for _, v := range b {
		if Normalize(v) == nil {
			continue
		}
		bs = append(bs, stringify(v))
	}
	return equalStringSets(as, bs)
}

func equalStringSets(a, b []string) bool {
	a = dedup(a)
	b = dedup(b)
	if len(a) != len(b) {
		return false
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dedup(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func toSlice(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case []interface{}:
		return t, true
	case []int64:
		out := make([]interface{}, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out, true
	case []int:
		out := make([]interface{}, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out, true
	case []string:
		out := make([]interface{}, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out, true
	}
	return nil, false
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, uint, float32, float64:
		return true
	}
	return false
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

// toNumber coerces a value to float64; nil and unparseable strings count as 0.
func toNumber(v interface{}) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		return s != "" && s != "0" && !strings.EqualFold(s, "false")
	default:
		return toNumber(v) != 0
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// 5.0 dari JSON harus sama dengan "5"
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
