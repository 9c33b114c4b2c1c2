package rim

import (
	"strconv"
	"strings"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/diff"
)

// RIM (Remote Inheritance Model): record varian per-site kirim null untuk
// field yang mewarisi dari master, jadi edit di master otomatis ikut turun.
// BuildPayload di sini yang memutuskan field mana dikirim eksplisit dan mana
// yang di-null-kan.

// MasterSite is the site code of root/master records.
const MasterSite = "QVC"

// InheritableFields is the fixed list of fields a variant may inherit from
// its master. Urutan tidak penting, daftarnya yang fixed.
var InheritableFields = []string{
	"name",
	"price",
	"market_price",
	"summary",
	"description",
	"specification",
	"brand_id",
	"category_ids",
	"warranty",
	"sku",
	"is_special",
	"promotion_text",
}

// boolFields are serialized to 0/1 on the wire.
var boolFields = map[string]bool{
	"is_visible":     true,
	"is_new":         true,
	"is_best_seller": true,
	"is_special":     true,
}

// IsVariant reports whether a form state belongs to a site variant
// (parent set dan bukan site master).
func IsVariant(form map[string]interface{}) bool {
	site, _ := form["site_code"].(string)
	return diff.Normalize(form["parent_id"]) != nil && site != MasterSite
}

// BuildPayload builds the create/update payload for a product form state.
//
//   - editing=false: every field goes out as-is (create mode).
//   - editing=true: only dirty fields (vs baseline) go out, structural
//     fields always included.
//   - variant with a loaded parent snapshot: inheritable fields equal to the
//     parent's current value are forced to null — "resume inheriting".
//     Kalau parent belum ke-load, pruning DILEWATI total; null-in field
//     tanpa pembanding itu bug, bukan fitur.
//   - media: equal to parent's resolved gallery (set compare) → empty list.
func BuildPayload(form, baseline, parent map[string]interface{}, editing bool) map[string]interface{} {
	payload := map[string]interface{}{}

	for k, v := range form {
		if k == "media_ids" {
			continue
		}
		if diff.StructuralFields[k] {
			payload[k] = v
			continue
		}
		if !editing || diff.IsDirty(k, v, baseline[k]) {
			payload[k] = v
		}
	}
	if _, ok := payload["site_code"]; !ok {
		payload["site_code"] = form["site_code"]
	}
	if _, ok := payload["parent_id"]; !ok {
		payload["parent_id"] = form["parent_id"]
	}

	variant := IsVariant(form)

	// Override pruning: nilai sama dengan master saat ini = kembali mewarisi.
	// Berlaku juga untuk field yang baru saja diedit sampai kebetulan sama.
	if variant && parent != nil {
		for _, f := range InheritableFields {
			if diff.Equal(form[f], parent[f]) {
				payload[f] = nil
			}
		}
	}

	// Media gallery.
	cur := ToIDList(form["media_ids"])
	if variant && parent != nil && diff.EqualIDSet(cur, ToIDList(parent["media_ids"])) {
		payload["media_ids"] = []int64{}
	} else if !editing || !diff.EqualIDSet(cur, ToIDList(baseline["media_ids"])) {
		payload["media_ids"] = FilterIDs(cur)
	}

	// Wire normalization.
	if ids, ok := payload["category_ids"]; ok && diff.Normalize(ids) != nil {
		payload["category_ids"] = SerializeCategoryIDs(ToIDList(ids))
	}
	for f := range boolFields {
		if v, ok := payload[f]; ok && v != nil {
			payload[f] = BoolToInt(v)
		}
	}
	if parent != nil && diff.Normalize(payload["parent_id"]) == nil {
		if id := ToID(parent["id"]); id != 0 {
			payload["parent_id"] = id
		}
	}

	return payload
}

// ResolveInherited merges a variant's fields over its master: field varian
// yang null diambil dari master. Structural fields tetap milik varian.
func ResolveInherited(variant, master map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(variant))
	for k, v := range variant {
		out[k] = v
	}
	if master == nil {
		return out
	}
	for _, f := range InheritableFields {
		if diff.Normalize(out[f]) == nil {
			out[f] = master[f]
		}
	}
	if len(FilterIDs(ToIDList(out["media_ids"]))) == 0 {
		out["media_ids"] = master["media_ids"]
	}
	return out
}

// SerializeCategoryIDs renders an ID set in the backend's comma-wrapped
// format, e.g. ",12,45,". Empty set → empty string.
func SerializeCategoryIDs(ids []int64) string {
	ids = FilterIDs(ids)
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "," + strings.Join(parts, ",") + ","
}

// ParseCategoryIDs parses the ",12,45," wire format back into IDs.
func ParseCategoryIDs(s string) []int64 {
	var out []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

// BoolToInt coerces a flag value to wire 0/1.
func BoolToInt(v interface{}) int {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
	case int:
		if t != 0 {
			return 1
		}
	case int64:
		if t != 0 {
			return 1
		}
	case float64:
		if t != 0 {
			return 1
		}
	case string:
		s := strings.TrimSpace(t)
		if s != "" && s != "0" && !strings.EqualFold(s, "false") {
			return 1
		}
	}
	return 0
}

// ToID coerces a single value (JSON number, string, int) to an int64 ID.
func ToID(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case uint:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		id, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return id
	}
	return 0
}

// ToIDList coerces an array-ish value (JSON array, []int64, ",1,2," string)
// to an ID list. Nil in, nil out.
func ToIDList(v interface{}) []int64 {
	switch t := v.(type) {
	case nil:
		return nil
	case []int64:
		return t
	case []int:
		out := make([]int64, len(t))
		for i, x := range t {
			out[i] = int64(x)
		}
		return out
	case []interface{}:
		out := make([]int64, 0, len(t))
		for _, x := range t {
			out = append(out, ToID(x))
		}
		return out
	case string:
		return ParseCategoryIDs(t)
	}
	return nil
}

// FilterIDs drops falsy (0) entries, preserving order.
func FilterIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}
