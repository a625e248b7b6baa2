// Package cache is the in-memory, volatile store of groups and records
// for the current session. It is the single source of truth the UI
// renders from: a map of group id to its ordered records plus two
// derived views, the visible groups and the visible records of either
// the selected group or the active search.
//
// All state lives behind one mutex and is only reachable through named
// operations. Views are recomputed after every mutation and handed out
// as copies, so readers never observe a half-mutated list. None of the
// operations touch the network; a miss returns a zero value and false
// rather than an error, because the UI must tolerate "already gone"
// races with background refreshes.
package cache

import (
	"errors"
	"fmt"
	"sync"

	"passkeeper/internal/app/client/crypto"
	"passkeeper/internal/model"
)

// Cache holds the decrypted records of the authenticated user.
type Cache struct {
	mu      sync.RWMutex
	groups  []model.Group
	records map[int64][]model.Record

	selectedGroup  int64 // 0 when nothing is selected
	selectedRecord int64
	searchActive   bool

	visibleGroups  []model.Group
	visibleRecords []model.Record
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{records: make(map[int64][]model.Record)}
}

// ReplaceAll rebuilds the whole cache from freshly fetched records,
// decrypting the title, username and secret of each with key. A record
// whose fields cannot be decrypted is kept with those fields blanked and
// Corrupted set, and contributes to the returned joined error; the rest
// of the cache is still built. Views, search and selection are cleared.
func (c *Cache) ReplaceAll(records []model.Record, key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make(map[int64][]model.Record, len(records))

	var errs []error
	for _, r := range records {
		if err := decryptRecord(&r, key); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", r.ID, err))
		}
		c.records[r.GroupID] = append(c.records[r.GroupID], r)
	}

	c.selectedGroup = 0
	c.selectedRecord = 0
	c.searchActive = false
	c.refreshViews()

	return errors.Join(errs...)
}

func decryptRecord(r *model.Record, key []byte) error {
	title, terr := crypto.DecryptString(key, r.Title)
	username, uerr := crypto.DecryptString(key, r.Username)
	secret, serr := crypto.DecryptString(key, r.Secret)

	if err := errors.Join(terr, uerr, serr); err != nil {
		// Never surface raw ciphertext in place of a value.
		r.Title, r.Username, r.Secret = "", "", ""
		r.Corrupted = true
		return err
	}

	r.Title, r.Username, r.Secret = title, username, secret
	return nil
}

// SetGroups replaces the groups view wholesale.
func (c *Cache) SetGroups(groups []model.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = append([]model.Group(nil), groups...)
	if c.selectedGroup != 0 && c.findGroup(c.selectedGroup) < 0 {
		c.selectedGroup = 0
		c.selectedRecord = 0
	}
	c.refreshViews()
}

// AddGroup appends a server-acknowledged group and selects it.
func (c *Cache) AddGroup(g model.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = append(c.groups, g)
	c.selectedGroup = g.ID
	c.selectedRecord = 0
	c.searchActive = false
	c.refreshViews()
}

// RemoveGroup removes a group and cascade-purges its records. If the
// removed group was selected, the selection and the records view are
// cleared. Returns the removed group, or false if the id is unknown.
func (c *Cache) RemoveGroup(id int64) (model.Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.findGroup(id)
	if i < 0 {
		return model.Group{}, false
	}

	removed := c.groups[i]
	c.groups = append(c.groups[:i], c.groups[i+1:]...)
	delete(c.records, id)

	if c.selectedGroup == id {
		c.selectedGroup = 0
		c.selectedRecord = 0
	}
	c.refreshViews()

	return removed, true
}

// RenameGroup updates a group's name and comment in place.
func (c *Cache) RenameGroup(id int64, name, comment string) (model.Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.findGroup(id)
	if i < 0 {
		return model.Group{}, false
	}

	c.groups[i].Name = name
	c.groups[i].Comment = comment
	c.refreshViews()

	return c.groups[i], true
}

// AddRecord appends a server-acknowledged, already-decrypted record to
// its group's list and selects it.
func (c *Cache) AddRecord(r model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[r.GroupID] = append(c.records[r.GroupID], r)
	c.selectedRecord = r.ID
	c.refreshViews()
}

// RemoveRecord deletes a record by id, scanning all groups (ids are
// globally unique). Returns the removed record, or false when absent.
func (c *Cache) RemoveRecord(id int64) (model.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gid, i := c.findRecord(id)
	if i < 0 {
		return model.Record{}, false
	}

	removed := c.records[gid][i]
	c.records[gid] = append(c.records[gid][:i], c.records[gid][i+1:]...)
	if c.selectedRecord == id {
		c.selectedRecord = 0
	}
	c.refreshViews()

	return removed, true
}

// UpdateRecord replaces the mutable fields of the record with upd.ID.
// The group a record belongs to never changes through this path.
func (c *Cache) UpdateRecord(upd model.Record) (model.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gid, i := c.findRecord(upd.ID)
	if i < 0 {
		return model.Record{}, false
	}

	r := &c.records[gid][i]
	r.Title = upd.Title
	r.Username = upd.Username
	r.Secret = upd.Secret
	r.Link = upd.Link
	r.Note = upd.Note
	r.UpdatedAt = upd.UpdatedAt
	r.Corrupted = false
	c.refreshViews()

	return *r, true
}

// SelectGroup makes the given group the one whose records are visible.
// Selecting an unknown id clears the selection.
func (c *Cache) SelectGroup(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findGroup(id) < 0 {
		c.selectedGroup = 0
	} else {
		c.selectedGroup = id
	}
	c.selectedRecord = 0
	c.searchActive = false
	c.refreshViews()
}

// SetSearchResults overrides the records view with search results,
// independent of group selection. Results are derived data: they are
// never written back into the per-group map.
func (c *Cache) SetSearchResults(records []model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchActive = true
	c.visibleRecords = append([]model.Record(nil), records...)
}

// ClearSearch drops the search view and restores the selected-group
// view.
func (c *Cache) ClearSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchActive = false
	c.refreshViews()
}

// Wipe clears everything. Called on logout so decrypted data of the
// previous user does not stay resident.
func (c *Cache) Wipe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = nil
	c.records = make(map[int64][]model.Record)
	c.selectedGroup = 0
	c.selectedRecord = 0
	c.searchActive = false
	c.refreshViews()
}

// Groups returns a snapshot of the visible groups.
func (c *Cache) Groups() []model.Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Group(nil), c.visibleGroups...)
}

// VisibleRecords returns a snapshot of the current records view: the
// selected group's records, or the search results while a search is
// active.
func (c *Cache) VisibleRecords() []model.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Record(nil), c.visibleRecords...)
}

// RecordsOf returns a snapshot of one group's records.
func (c *Cache) RecordsOf(groupID int64) []model.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Record(nil), c.records[groupID]...)
}

// AllRecords returns a snapshot of every record, ordered by group.
func (c *Cache) AllRecords() []model.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Record
	for _, g := range c.groups {
		out = append(out, c.records[g.ID]...)
	}
	return out
}

// Record returns a record by id.
func (c *Cache) Record(id int64) (model.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	gid, i := c.findRecord(id)
	if i < 0 {
		return model.Record{}, false
	}
	return c.records[gid][i], true
}

// Group returns a group by id.
func (c *Cache) Group(id int64) (model.Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.findGroup(id)
	if i < 0 {
		return model.Group{}, false
	}
	return c.groups[i], true
}

// SelectedGroup returns the selected group id, or false when nothing is
// selected.
func (c *Cache) SelectedGroup() (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedGroup, c.selectedGroup != 0
}

// SelectedRecord returns the id of the current record, or false. After
// a delete nothing is selected; after an insert the inserted record is.
func (c *Cache) SelectedRecord() (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedRecord, c.selectedRecord != 0
}

// refreshViews recomputes both published views. Callers hold c.mu.
func (c *Cache) refreshViews() {
	c.visibleGroups = append([]model.Group(nil), c.groups...)

	if c.searchActive {
		return // the search view is replaced explicitly
	}
	if c.selectedGroup == 0 {
		c.visibleRecords = nil
		return
	}
	c.visibleRecords = append([]model.Record(nil), c.records[c.selectedGroup]...)
}

func (c *Cache) findGroup(id int64) int {
	for i, g := range c.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cache) findRecord(id int64) (int64, int) {
	for gid, list := range c.records {
		for i, r := range list {
			if r.ID == id {
				return gid, i
			}
		}
	}
	return 0, -1
}
