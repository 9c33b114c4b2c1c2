package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/rim"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/editor"
)

// fakeAPI: catalog in-memory buat ngetes sesi editor tanpa HTTP.
type fakeAPI struct {
	mu      sync.Mutex
	records map[int64]*editor.ProductRecord
	links   []editor.ProductLink
	nextID  int64

	fetchCalls  int
	createCalls int
	updateCalls int

	lastPayload map[string]interface{}
	failUpdate  error
	failFetch   error

	// dipanggil di tengah UpdateProduct, buat ngetes guard save-in-flight
	duringUpdate func()
	// dipanggil sekali di awal FetchProduct, buat ngetes guard respon basi
	duringFetch func()
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: map[int64]*editor.ProductRecord{}, nextID: 100}
}

func (f *fakeAPI) put(r *editor.ProductRecord) { f.records[r.ID] = r }

func clone(r *editor.ProductRecord) *editor.ProductRecord {
	cp := *r
	cp.Fields = r.Fields.Clone()
	return &cp
}

func (f *fakeAPI) FetchProduct(ctx context.Context, id int64) (*editor.ProductRecord, error) {
	if f.duringFetch != nil {
		hook := f.duringFetch
		f.duringFetch = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.failFetch != nil {
		return nil, f.failFetch
	}
	r, ok := f.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return clone(r), nil
}

func (f *fakeAPI) FetchLinks(ctx context.Context, rootID int64) ([]editor.ProductLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []editor.ProductLink
	for _, l := range f.links {
		if l.SourceProductID == rootID {
			out = append(out, l)
		}
	}
	return out, nil
}

func recordFromPayload(id int64, payload map[string]interface{}) *editor.ProductRecord {
	rec := &editor.ProductRecord{ID: id, Fields: editor.FormState{}}
	for k, v := range payload {
		switch k {
		case "site_code":
			rec.SiteCode, _ = v.(string)
		case "parent_id":
			rec.ParentID = rim.ToID(v)
		default:
			rec.Fields[k] = v
		}
	}
	return rec
}

func (f *fakeAPI) CreateProduct(ctx context.Context, payload map[string]interface{}) (*editor.ProductRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastPayload = payload
	f.nextID++
	rec := recordFromPayload(f.nextID, payload)
	f.records[rec.ID] = rec
	return clone(rec), nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id int64, payload map[string]interface{}) (*editor.ProductRecord, error) {
	if f.duringUpdate != nil {
		f.duringUpdate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastPayload = payload
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	for k, v := range payload {
		if k == "site_code" || k == "parent_id" {
			continue
		}
		rec.Fields[k] = v
	}
	return clone(rec), nil
}

func (f *fakeAPI) CreateLink(ctx context.Context, link editor.ProductLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, link)
	return nil
}

// seedCatalog: master id=1 (QVC) + varian id=2 (THIENDUC) yang full inherit.
func seedCatalog() *fakeAPI {
	api := newFakeAPI()
	api.put(&editor.ProductRecord{
		ID:       1,
		SiteCode: "QVC",
		Fields: editor.FormState{
			"name":      "Laptop Dell",
			"price":     int64(100000),
			"summary":   "ringkasan master",
			"media_ids": []int64{20, 21},
		},
	})
	api.put(&editor.ProductRecord{
		ID:       2,
		ParentID: 1,
		SiteCode: "THIENDUC",
		Fields: editor.FormState{
			"name":      nil,
			"price":     nil,
			"summary":   nil,
			"media_ids": []int64{},
		},
	})
	api.links = []editor.ProductLink{
		{SourceProductID: 1, TargetProductID: 2, SiteCode: "THIENDUC", LinkType: "site_variant"},
	}
	return api
}

func TestInitializeFromMaster(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)

	err := sess.InitializeFromMaster(context.Background(), 1)
	c.Assert(err, qt.IsNil)

	tabs := sess.Tabs()
	c.Assert(tabs, qt.HasLen, 2)
	c.Assert(tabs[0].IsRoot, qt.IsTrue)
	c.Assert(tabs[0].ID, qt.Equals, int64(1))
	c.Assert(tabs[1].SiteCode, qt.Equals, "THIENDUC")
	c.Assert(tabs[1].Cached(), qt.IsFalse) // varian belum di-fetch

	c.Assert(sess.ActiveTabID(), qt.Equals, int64(1))
	c.Assert(sess.DirtyCount(), qt.Equals, 0)
	c.Assert(sess.Field("name"), qt.Equals, "Laptop Dell")
}

func TestSwitchTab(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	// no-op kalau sudah aktif
	fetchesBefore := api.fetchCalls
	c.Assert(sess.SwitchTab(context.Background(), 1), qt.IsNil)
	c.Assert(api.fetchCalls, qt.Equals, fetchesBefore)

	c.Assert(sess.SwitchTab(context.Background(), 2), qt.IsNil)
	c.Assert(sess.ActiveTabID(), qt.Equals, int64(2))
	c.Assert(sess.Field("site_code"), qt.Equals, "THIENDUC")
	c.Assert(sess.DirtyCount(), qt.Equals, 0)

	c.Assert(sess.SwitchTab(context.Background(), 99), qt.Equals, editor.ErrUnknownTab)
	// state tidak berubah setelah gagal
	c.Assert(sess.ActiveTabID(), qt.Equals, int64(2))
}

func TestSwitchTabFetchFailureKeepsState(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	sess.SetField("name", "diedit")
	api.failFetch = errors.New("timeout")

	err := sess.SwitchTab(context.Background(), 2)
	c.Assert(err, qt.IsNotNil)

	// tab aktif dan form state tetap utuh
	c.Assert(sess.ActiveTabID(), qt.Equals, int64(1))
	c.Assert(sess.Field("name"), qt.Equals, "diedit")
	c.Assert(sess.DirtyCount(), qt.Equals, 1)
}

func TestSaveNoOpWhenClean(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	res, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(res.NoOp, qt.IsTrue)
	// tidak boleh ada request update sama sekali
	c.Assert(api.updateCalls, qt.Equals, 0)
}

func TestSaveMediaOnlyEdit(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	// cuma gallery yang berubah: tetap harus ke-save, bukan no-op
	sess.SetField("media_ids", []int64{99})

	res, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(res.NoOp, qt.IsFalse)
	c.Assert(api.updateCalls, qt.Equals, 1)
	c.Assert(api.lastPayload["media_ids"], qt.DeepEquals, []int64{99})

	// set yang sama di-set ulang = tetap no-op
	sess.SetField("media_ids", []int64{99})
	res, err = sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(res.NoOp, qt.IsTrue)
	c.Assert(api.updateCalls, qt.Equals, 1)
}

func TestSaveVariantEqualToParentSendsNull(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)
	c.Assert(sess.SwitchTab(context.Background(), 2), qt.IsNil)

	// diedit sampai kebetulan sama dengan harga master
	sess.SetField("price", int64(100000))
	c.Assert(sess.FieldDirty("price"), qt.IsTrue)

	res, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(res.NoOp, qt.IsFalse)
	c.Assert(api.updateCalls, qt.Equals, 1)

	v, ok := api.lastPayload["price"]
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.IsNil) // sama dengan master = balik mewarisi

	// setelah sukses, baseline diganti -> bersih lagi
	c.Assert(sess.DirtyCount(), qt.Equals, 0)
}

func TestSaveVariantExplicitOverride(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)
	c.Assert(sess.SwitchTab(context.Background(), 2), qt.IsNil)

	sess.SetField("price", int64(120000))
	c.Assert(sess.IsOverride("price"), qt.IsTrue)

	_, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(api.lastPayload["price"], qt.Equals, int64(120000))
}

func TestSaveFailureKeepsFormState(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	sess.SetField("name", "Laptop Dell XPS")
	api.failUpdate = errors.New("Tên sản phẩm đã tồn tại")

	_, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.ErrorMatches, ".*đã tồn tại.*")

	// form dan dirty flag tidak disentuh, user bisa retry
	c.Assert(sess.Field("name"), qt.Equals, "Laptop Dell XPS")
	c.Assert(sess.DirtyCount(), qt.Equals, 1)

	api.failUpdate = nil
	res, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(res.NoOp, qt.IsFalse)
	c.Assert(sess.DirtyCount(), qt.Equals, 0)
}

func TestSwitchTabRejectedDuringSave(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	var switchErr error
	api.duringUpdate = func() {
		switchErr = sess.SwitchTab(context.Background(), 2)
	}

	sess.SetField("name", "Laptop Dell Pro")
	_, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(switchErr, qt.Equals, editor.ErrSaveInFlight)
	c.Assert(sess.ActiveTabID(), qt.Equals, int64(1))
}

func TestStaleFetchNeverCommits(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	api.put(&editor.ProductRecord{
		ID:       3,
		ParentID: 1,
		SiteCode: "HALONG",
		Fields: editor.FormState{
			"name":      nil,
			"price":     nil,
			"summary":   nil,
			"media_ids": []int64{},
		},
	})
	api.links = append(api.links, editor.ProductLink{
		SourceProductID: 1, TargetProductID: 3, SiteCode: "HALONG", LinkType: "site_variant",
	})

	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	// Switch kedua nyelip di tengah fetch switch pertama: yang duluan
	// selesai menang, respon switch pertama sudah basi dan dibuang.
	var innerErr error
	api.duringFetch = func() {
		innerErr = sess.SwitchTab(context.Background(), 3)
	}

	err := sess.SwitchTab(context.Background(), 2)
	c.Assert(err, qt.Equals, editor.ErrStaleResponse)
	c.Assert(innerErr, qt.IsNil)

	// state milik switch yang menang, fetch basi tidak commit apa pun
	c.Assert(sess.ActiveTabID(), qt.Equals, int64(3))
	c.Assert(sess.Field("site_code"), qt.Equals, "HALONG")
	tabs := sess.Tabs()
	c.Assert(tabs[1].ID, qt.Equals, int64(2))
	c.Assert(tabs[1].Cached(), qt.IsFalse)
}

func TestStartDraftDispatchesCreate(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	sess.StartDraft("QVC")
	c.Assert(sess.ActiveTabID(), qt.Equals, editor.NewRecordTabID)

	sess.SetField("name", "Produk Baru")
	sess.SetField("price", int64(50000))

	res, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(res.Created, qt.IsTrue)
	c.Assert(api.createCalls, qt.Equals, 1)
	c.Assert(api.updateCalls, qt.Equals, 0)

	// create mode: field unchanged pun ikut
	c.Assert(api.lastPayload["name"], qt.Equals, "Produk Baru")
	c.Assert(api.lastPayload["site_code"], qt.Equals, "QVC")

	// tab sentinel diganti ID beneran
	c.Assert(sess.ActiveTabID(), qt.Equals, res.Record.ID)
}

func TestCreateVariantForSite(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	err := sess.CreateVariantForSite(context.Background(), "HALONG")
	c.Assert(err, qt.IsNil)

	// create di-seed dari master, visibility off
	c.Assert(api.createCalls, qt.Equals, 1)
	c.Assert(api.lastPayload["site_code"], qt.Equals, "HALONG")
	c.Assert(api.lastPayload["parent_id"], qt.Equals, int64(1))
	c.Assert(api.lastPayload["is_visible"], qt.Equals, 0)

	// varian baru lahir mewarisi, bukan nge-pin nilai master: field
	// inheritable dikirim null, gallery dikirim list kosong. Edit master
	// selanjutnya harus ikut turun.
	priceVal, ok := api.lastPayload["price"]
	c.Assert(ok, qt.IsTrue)
	c.Assert(priceVal, qt.IsNil)
	c.Assert(api.lastPayload["name"], qt.IsNil)
	c.Assert(api.lastPayload["media_ids"], qt.DeepEquals, []int64{})

	// link kebentuk dan tab list di-rebuild dari master
	c.Assert(api.links, qt.HasLen, 2)
	tabs := sess.Tabs()
	c.Assert(tabs, qt.HasLen, 3)
	c.Assert(sess.ActiveTabID(), qt.Equals, int64(1))
}

func TestOnSavedListener(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)

	var notified *editor.ProductRecord
	sess.OnSaved = func(r *editor.ProductRecord) { notified = r }

	sess.SetField("name", "Laptop Dell 2")
	_, err := sess.Save(context.Background(), false)
	c.Assert(err, qt.IsNil)
	c.Assert(notified, qt.IsNotNil)
	c.Assert(notified.ID, qt.Equals, int64(1))
}

func TestRevertToInherited(t *testing.T) {
	c := qt.New(t)
	api := seedCatalog()
	sess := editor.NewSession(api)
	c.Assert(sess.InitializeFromMaster(context.Background(), 1), qt.IsNil)
	c.Assert(sess.SwitchTab(context.Background(), 2), qt.IsNil)

	sess.SetField("summary", "versi site")
	c.Assert(sess.IsOverride("summary"), qt.IsTrue)

	sess.RevertToInherited("summary")
	c.Assert(sess.Field("summary"), qt.Equals, "ringkasan master")
	c.Assert(sess.IsOverride("summary"), qt.IsFalse)
}
