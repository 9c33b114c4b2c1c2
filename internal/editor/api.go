package editor

import (
	"context"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/rim"
)

// FormState is the flat trackable-field map the editor works on.
type FormState map[string]interface{}

// Clone returns a shallow copy (nilai field scalar/list di-treat immutable).
func (f FormState) Clone() FormState {
	out := make(FormState, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ProductRecord is one product as fetched from the catalog API, master or
// variant. Fields holds every trackable content field (termasuk media_ids).
type ProductRecord struct {
	ID       int64
	ParentID int64 // 0 = record ini master
	SiteCode string
	Fields   FormState
}

// FormStateWithIdentity returns the record's fields plus the structural
// identity keys the diff/RIM layer expects.
func (r *ProductRecord) FormStateWithIdentity() FormState {
	f := r.Fields.Clone()
	f["site_code"] = r.SiteCode
	if r.ParentID != 0 {
		f["parent_id"] = r.ParentID
	} else {
		f["parent_id"] = nil
	}
	return f
}

// ParentFields returns the map the RIM pruner compares against, with the
// master's id included for parent_id force-fill.
func (r *ProductRecord) ParentFields() map[string]interface{} {
	f := r.Fields.Clone()
	f["id"] = r.ID
	return map[string]interface{}(f)
}

// ProductLink associates a master record with a site variant.
type ProductLink struct {
	SourceProductID int64  `json:"source_product_id"`
	TargetProductID int64  `json:"target_product_id"`
	SiteCode        string `json:"site_code"`
	LinkType        string `json:"link_type"`
}

// API is the catalog surface the editor session needs. Implementasi HTTP ada
// di services/catalogapi; test pakai fake.
type API interface {
	FetchProduct(ctx context.Context, id int64) (*ProductRecord, error)
	FetchLinks(ctx context.Context, rootID int64) ([]ProductLink, error)
	CreateProduct(ctx context.Context, payload map[string]interface{}) (*ProductRecord, error)
	UpdateProduct(ctx context.Context, id int64, payload map[string]interface{}) (*ProductRecord, error)
	CreateLink(ctx context.Context, link ProductLink) error
}

// MasterSite re-exports the root site code so callers don't import rim just
// for the constant.
const MasterSite = rim.MasterSite
