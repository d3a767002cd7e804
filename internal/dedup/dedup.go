// Package dedup maintains the content-fingerprint index used to detect
// re-copies. The index maps each fingerprint to the most recent live item
// id holding that content. It is derived state: never persisted, rebuilt
// from the item store on engine open.
package dedup

import (
	"github.com/hasteapp/hastecore/pkg/types"
)

// Index maps content fingerprints to the most recent item id with that
// content. Not safe for concurrent use; the engine serializes access.
type Index struct {
	byFingerprint map[types.Fingerprint]int64
}

// New returns an empty index.
func New() *Index {
	return &Index{
		byFingerprint: make(map[types.Fingerprint]int64),
	}
}

// Seed is one stored item's contribution to a rebuilt index.
type Seed struct {
	ID          int64
	Fingerprint types.Fingerprint
}

// Warm rebuilds the index from stored items. Seeds must arrive oldest
// first so that the most recent item wins each fingerprint.
func (x *Index) Warm(seeds []Seed) {
	for _, seed := range seeds {
		x.byFingerprint[seed.Fingerprint] = seed.ID
	}
}

// Lookup returns the live item id registered for fp, if any.
func (x *Index) Lookup(fp types.Fingerprint) (int64, bool) {
	id, ok := x.byFingerprint[fp]
	return id, ok
}

// Register records id as the most recent holder of fp.
func (x *Index) Register(fp types.Fingerprint, id int64) {
	x.byFingerprint[fp] = id
}

// Forget drops the entry for fp, but only if it still points at id.
// Deleting an older duplicate must not clobber a newer registration.
func (x *Index) Forget(fp types.Fingerprint, id int64) {
	if current, ok := x.byFingerprint[fp]; ok && current == id {
		delete(x.byFingerprint, fp)
	}
}

// Len returns the number of distinct fingerprints tracked.
func (x *Index) Len() int {
	return len(x.byFingerprint)
}
