package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/diff"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/rim"
)

// Session = satu sesi editor multi-site: root tab + tab per varian.
// Satu tab aktif, form state + baseline snapshot milik tab aktif saja.

// NewRecordTabID is the sentinel tab ID for a not-yet-persisted draft.
const NewRecordTabID int64 = -1

var (
	// ErrSaveInFlight: tab switch ditolak selama save jalan, biar response
	// save tidak nimpa state tab lain.
	ErrSaveInFlight   = errors.New("editor: save in progress")
	ErrNotInitialized = errors.New("editor: session not initialized")
	ErrUnknownTab     = errors.New("editor: unknown tab")
	ErrStaleResponse  = errors.New("editor: stale response discarded")
)

// Tab is one open product record in the session.
type Tab struct {
	ID       int64
	SiteCode string
	IsRoot   bool

	cached *ProductRecord
}

// Cached reports whether the tab's record has been fetched this session.
func (t *Tab) Cached() bool { return t.cached != nil }

// SaveResult describes the outcome of Session.Save.
type SaveResult struct {
	NoOp    bool
	Created bool
	Record  *ProductRecord
}

type Session struct {
	api API

	mu       sync.Mutex
	gen      uint64 // naik tiap kali state tab aktif diganti; fetch lama tidak boleh commit
	rootID   int64
	root     *ProductRecord
	tabs     []*Tab
	activeID int64
	form     FormState
	baseline FormState
	saving   bool
	closed   bool

	// OnSaved is notified after every successful save (refresh listener).
	OnSaved func(*ProductRecord)
}

func NewSession(api API) *Session {
	return &Session{api: api, activeID: 0}
}

// InitializeFromMaster loads the master record and its links, builds the tab
// list (root dulu, varian belum di-fetch), and activates the master.
func (s *Session) InitializeFromMaster(ctx context.Context, masterID int64) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	gen := s.gen
	s.mu.Unlock()

	master, err := s.api.FetchProduct(ctx, masterID)
	if err != nil {
		return fmt.Errorf("load master %d: %w", masterID, err)
	}
	links, err := s.api.FetchLinks(ctx, masterID)
	if err != nil {
		return fmt.Errorf("load links %d: %w", masterID, err)
	}

	tabs := []*Tab{{ID: master.ID, SiteCode: master.SiteCode, IsRoot: true, cached: master}}
	for _, l := range links {
		tabs = append(tabs, &Tab{ID: l.TargetProductID, SiteCode: l.SiteCode})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.closed {
		return ErrStaleResponse
	}
	s.gen++
	s.rootID = master.ID
	s.root = master
	s.tabs = tabs
	s.activeID = master.ID
	s.form = master.FormStateWithIdentity()
	s.baseline = s.form.Clone()
	return nil
}

// SwitchTab activates another tab: fetch kalau belum di-cache, pastikan root
// snapshot ada sebelum varian aktif (RIM butuh pembanding), lalu ganti form
// dan baseline. No-op kalau sudah aktif.
func (s *Session) SwitchTab(ctx context.Context, tabID int64) error {
	s.mu.Lock()
	if s.rootID == 0 {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	if tabID == s.activeID {
		s.mu.Unlock()
		return nil
	}
	tab := s.findTab(tabID)
	if tab == nil {
		s.mu.Unlock()
		return ErrUnknownTab
	}
	gen := s.gen
	cached := tab.cached
	rootCached := s.root
	rootID := s.rootID
	s.mu.Unlock()

	record := cached
	if record == nil {
		var err error
		record, err = s.api.FetchProduct(ctx, tabID)
		if err != nil {
			return fmt.Errorf("load product %d: %w", tabID, err)
		}
	}
	root := rootCached
	if !tab.IsRoot && root == nil {
		var err error
		root, err = s.api.FetchProduct(ctx, rootID)
		if err != nil {
			return fmt.Errorf("load master %d: %w", rootID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.closed {
		// Tab aktif sudah ganti duluan — respon ini basi, jangan commit.
		return ErrStaleResponse
	}
	s.gen++
	tab.cached = record
	if root != nil {
		s.root = root
	}
	s.activeID = tabID
	s.form = record.FormStateWithIdentity()
	s.form["site_code"] = tab.SiteCode // site dipaksa dari tab
	s.baseline = s.form.Clone()
	return nil
}

// CreateVariantForSite provisions a new linked record for a site: create
// seeded dari master (visibility off), bikin product link, lalu rebuild tab
// list dari master.
func (s *Session) CreateVariantForSite(ctx context.Context, siteCode string) error {
	s.mu.Lock()
	if s.rootID == 0 || s.root == nil {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	seed := s.root.Fields.Clone()
	parent := s.root.ParentFields()
	rootID := s.rootID
	s.mu.Unlock()

	seed["site_code"] = siteCode
	seed["parent_id"] = rootID
	seed["is_visible"] = 0

	// Seed di-prune terhadap master: varian baru lahir full inherit
	// (field null), bukan full override.
	payload := rim.BuildPayload(seed, nil, parent, false)
	created, err := s.api.CreateProduct(ctx, payload)
	if err != nil {
		return fmt.Errorf("create variant for %s: %w", siteCode, err)
	}
	err = s.api.CreateLink(ctx, ProductLink{
		SourceProductID: rootID,
		TargetProductID: created.ID,
		SiteCode:        siteCode,
		LinkType:        "site_variant",
	})
	if err != nil {
		return fmt.Errorf("link variant %d: %w", created.ID, err)
	}

	// Link berubah = full re-fetch, bukan merge lokal.
	return s.InitializeFromMaster(ctx, rootID)
}

// StartDraft opens the new-record sentinel tab for a fresh master product.
func (s *Session) StartDraft(siteCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.tabs = append(s.tabs, &Tab{ID: NewRecordTabID, SiteCode: siteCode})
	s.activeID = NewRecordTabID
	s.form = FormState{"site_code": siteCode, "parent_id": nil}
	s.baseline = FormState{}
}

// Save builds the pruned payload for the active tab and dispatches create or
// update. Nol field dirty pada record existing = no-op sukses tanpa request.
func (s *Session) Save(ctx context.Context, closeAfter bool) (*SaveResult, error) {
	s.mu.Lock()
	if s.activeID == 0 {
		s.mu.Unlock()
		return nil, ErrNotInitialized
	}
	if s.saving {
		s.mu.Unlock()
		return nil, ErrSaveInFlight
	}
	// Media tidak masuk CountDirty (set compare sendiri), jadi dicek terpisah
	// biar edit gallery doang tidak dianggap no-op.
	editing := s.activeID != NewRecordTabID
	if editing && diff.CountDirty(s.form, s.baseline) == 0 &&
		diff.EqualIDSet(rim.ToIDList(s.form["media_ids"]), rim.ToIDList(s.baseline["media_ids"])) {
		s.mu.Unlock()
		return &SaveResult{NoOp: true}, nil
	}

	form := s.form.Clone()
	baseline := s.baseline.Clone()
	var parent map[string]interface{}
	if rim.IsVariant(form) && s.root != nil {
		// Pruning cuma boleh jalan kalau snapshot master sudah ada.
		parent = s.root.ParentFields()
	}
	activeID := s.activeID
	gen := s.gen
	s.saving = true
	s.mu.Unlock()

	payload := rim.BuildPayload(form, baseline, parent, editing)

	var (
		saved *ProductRecord
		err   error
	)
	if editing {
		saved, err = s.api.UpdateProduct(ctx, activeID, payload)
	} else {
		saved, err = s.api.CreateProduct(ctx, payload)
	}

	s.mu.Lock()
	s.saving = false
	if err != nil {
		// Form dan dirty flags dibiarkan utuh biar user bisa retry.
		s.mu.Unlock()
		return nil, err
	}

	res := &SaveResult{Created: !editing, Record: saved}
	if s.gen == gen && !s.closed {
		s.baseline = form
		if tab := s.findTab(activeID); tab != nil {
			tab.cached = saved
			if !editing && saved != nil {
				tab.ID = saved.ID
				s.activeID = saved.ID
			}
		}
	}
	notify := s.OnSaved
	if closeAfter {
		s.closeLocked()
	}
	s.mu.Unlock()

	// Listener dipanggil tanpa lock, boleh manggil balik method session.
	if notify != nil {
		notify(saved)
	}
	return res, nil
}

// Close discards the session's snapshots.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.closed = true
	s.gen++
	s.tabs = nil
	s.form = nil
	s.baseline = nil
	s.root = nil
	s.activeID = 0
	s.rootID = 0
}

// ==== FORM STATE ====

// SetField applies a UI edit to the active form state.
func (s *Session) SetField(name string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return
	}
	s.form[name] = value
}

// Field reads one field of the active form state.
func (s *Session) Field(name string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form[name]
}

// FieldDirty reports whether a field differs from the baseline snapshot.
func (s *Session) FieldDirty(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return false
	}
	return diff.IsDirty(name, s.form[name], s.baseline[name])
}

// DirtyCount returns the number of changed trackable fields.
func (s *Session) DirtyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return 0
	}
	return diff.CountDirty(s.form, s.baseline)
}

// IsOverride reports whether a variant field currently differs from the
// master (dipakai UI untuk badge "override" + tombol balik ke inherited).
func (s *Session) IsOverride(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil || s.root == nil || !rim.IsVariant(s.form) {
		return false
	}
	return !diff.Equal(s.form[name], s.root.Fields[name])
}

// RevertToInherited sets a variant field back to the master's current value.
func (s *Session) RevertToInherited(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil || s.root == nil || !rim.IsVariant(s.form) {
		return
	}
	s.form[name] = s.root.Fields[name]
}

// ==== ACCESSORS ====

func (s *Session) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = *t
	}
	return out
}

func (s *Session) ActiveTabID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Session) findTab(id int64) *Tab {
	for _, t := range s.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}
