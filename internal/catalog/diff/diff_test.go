package diff_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/diff"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    interface{}
		b    interface{}
		want bool
	}{
		{
			name: "nil vs empty string",
			a:    nil,
			b:    "",
			want: true,
		},
		{
			name: "whitespace only counts as empty",
			a:    "   ",
			b:    nil,
			want: true,
		},
		{
			name: "numeric string vs number",
			a:    "5",
			b:    5,
			want: true,
		},
		{
			name: "json float vs int",
			a:    float64(100000),
			b:    int64(100000),
			want: true,
		},
		{
			name: "missing number treated as zero",
			a:    nil,
			b:    0,
			want: true,
		},
		{
			name: "different numbers",
			a:    "5",
			b:    6,
			want: false,
		},
		{
			name: "arrays ignore order",
			a:    []interface{}{1, 2},
			b:    []interface{}{2, 1},
			want: true,
		},
		{
			name: "arrays ignore duplicates",
			a:    []interface{}{1, 2, 2},
			b:    []interface{}{2, 1},
			want: true,
		},
		{
			name: "mixed string and number elements",
			a:    []interface{}{"1", 2},
			b:    []interface{}{float64(2), "1"},
			want: true,
		},
		{
			name: "arrays with different members",
			a:    []interface{}{1, 2},
			b:    []interface{}{1},
			want: false,
		},
		{
			name: "array vs scalar",
			a:    []interface{}{1},
			b:    1,
			want: false,
		},
		{
			name: "bool vs one",
			a:    true,
			b:    1,
			want: true,
		},
		{
			name: "bool vs zero",
			a:    false,
			b:    0,
			want: true,
		},
		{
			name: "bool vs string false",
			a:    false,
			b:    "false",
			want: true,
		},
		{
			name: "strings compared trimmed",
			a:    "Laptop Dell ",
			b:    "Laptop Dell",
			want: true,
		},
		{
			name: "different strings",
			a:    "a",
			b:    "b",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(diff.Equal(tt.a, tt.b), qt.Equals, tt.want)
			// simetris
			c.Assert(diff.Equal(tt.b, tt.a), qt.Equals, tt.want)
			c.Assert(diff.IsDirty("x", tt.a, tt.b), qt.Equals, !tt.want)
		})
	}
}

func TestCountDirty(t *testing.T) {
	c := qt.New(t)

	baseline := map[string]interface{}{
		"name":      "Laptop",
		"price":     int64(100000),
		"summary":   "",
		"site_code": "QVC",
		"parent_id": nil,
	}

	current := map[string]interface{}{
		"name":      "Laptop",
		"price":     int64(100000),
		"summary":   nil, // "" vs nil bukan perubahan
		"site_code": "THIENDUC",
		"parent_id": int64(1),
	}
	c.Assert(diff.CountDirty(current, baseline), qt.Equals, 0)

	// persis satu field berubah -> count 1
	current["price"] = int64(120000)
	c.Assert(diff.CountDirty(current, baseline), qt.Equals, 1)

	current["name"] = "Laptop Dell"
	c.Assert(diff.CountDirty(current, baseline), qt.Equals, 2)

	// field yang cuma ada di baseline tetap kehitung
	delete(current, "name")
	c.Assert(diff.CountDirty(current, baseline), qt.Equals, 2)

	// media punya jalur perbandingan sendiri, bukan lewat CountDirty
	current["media_ids"] = []int64{9, 9, 9}
	c.Assert(diff.CountDirty(current, baseline), qt.Equals, 2)
}

func TestEqualIDSet(t *testing.T) {
	tests := []struct {
		name string
		a    []int64
		b    []int64
		want bool
	}{
		{"order insensitive", []int64{1, 2, 3}, []int64{3, 1, 2}, true},
		{"falsy entries dropped", []int64{1, 0, 2}, []int64{2, 1}, true},
		{"duplicates collapse", []int64{5, 5}, []int64{5}, true},
		{"both empty", nil, []int64{0}, true},
		{"different sets", []int64{1, 2}, []int64{1, 4}, false},
		{"subset is not equal", []int64{1, 2}, []int64{1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(diff.EqualIDSet(tt.a, tt.b), qt.Equals, tt.want)
		})
	}
}

func TestNormalize(t *testing.T) {
	c := qt.New(t)

	c.Assert(diff.Normalize(nil), qt.IsNil)
	c.Assert(diff.Normalize(""), qt.IsNil)
	c.Assert(diff.Normalize(" \t"), qt.IsNil)
	c.Assert(diff.Normalize("x"), qt.Equals, "x")
	c.Assert(diff.Normalize(0), qt.Equals, 0) // nol bukan "kosong"
}
