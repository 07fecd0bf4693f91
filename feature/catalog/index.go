package catalog

import (
	"context"
	"sync"
	"time"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type indexKey struct {
	dir      object.Path
	kind     object.Kind
	stableID string
}

// snapshot is the set of saved asset records at one point in time.
type snapshot struct {
	records map[indexKey]importer.Record
	built   time.Time
	ttl     time.Duration
}

func (s *snapshot) expired() bool {
	if s.ttl == 0 {
		return true
	}
	return time.Since(s.built) > s.ttl
}

// Index is an importer.AssetIndex over the saved rows.
type Index struct {
	db  *gorm.DB
	ttl time.Duration

	mu   sync.RWMutex
	snap *snapshot
	sf   singleflight.Group
}

var _ importer.AssetIndex = (*Index)(nil)

// NewIndex creates an index over db. A zero ttl rebuilds on every lookup.
func NewIndex(db *gorm.DB, ttl time.Duration) *Index {
	return &Index{db: db, ttl: ttl}
}

// Lookup returns the record of the top-level asset of kind below dir tagged
// with stableID.
func (x *Index) Lookup(ctx context.Context, dir object.Path, kind object.Kind, stableID string) (importer.Record, bool, error) {
	snap, err := x.snapshot(ctx)
	if err != nil {
		return importer.Record{}, false, err
	}
	rec, ok := snap.records[indexKey{dir: dir, kind: kind, stableID: stableID}]
	return rec, ok, nil
}

// Invalidate drops the current snapshot.
func (x *Index) Invalidate() {
	x.mu.Lock()
	x.snap = nil
	x.mu.Unlock()
}

func (x *Index) snapshot(ctx context.Context) (*snapshot, error) {
	x.mu.RLock()
	snap := x.snap
	x.mu.RUnlock()
	if snap != nil && !snap.expired() {
		return snap, nil
	}

	v, err, _ := x.sf.Do("records", func() (any, error) {
		x.mu.RLock()
		snap := x.snap
		x.mu.RUnlock()
		if snap != nil && !snap.expired() {
			return snap, nil
		}

		built, err := x.build(ctx)
		if err != nil {
			return nil, err
		}
		x.mu.Lock()
		x.snap = built
		x.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

func (x *Index) build(ctx context.Context) (*snapshot, error) {
	if x.db == nil {
		return nil, ErrNoDatabase
	}
	var rows []Record
	err := x.db.WithContext(ctx).
		Select("id", "kind", "dir", "name", "stable_id", "source_file", "hash").
		Where("outer_id = ? AND stable_id <> ?", "", "").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make(map[indexKey]importer.Record, len(rows))
	for _, r := range rows {
		k := indexKey{dir: object.Path(r.Dir), kind: object.Kind(r.Kind), stableID: r.StableID}
		records[k] = importer.Record{Path: r.Path(), SourceFile: r.SourceFile, Hash: r.Hash}
	}
	return &snapshot{records: records, built: time.Now(), ttl: x.ttl}, nil
}
