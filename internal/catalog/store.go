// Package catalog maintains an in-memory view of the product table
// export plus a hidden-product overlay, both backed by plain files.
package catalog

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("product not found")

// Store owns the product cache. A single mutex serializes every
// table-file and hidden-set-file mutation; two concurrent admin writes
// would otherwise interleave their read-modify-write cycles and lose
// one of them.
type Store struct {
	csvPath    string
	hiddenPath string
	maxAge     time.Duration
	log        *zap.Logger

	mu       sync.RWMutex
	products []Product
	loadedAt time.Time
}

func NewStore(csvPath, hiddenPath string, maxAge time.Duration, log *zap.Logger) *Store {
	s := &Store{
		csvPath:    csvPath,
		hiddenPath: hiddenPath,
		maxAge:     maxAge,
		log:        log,
	}
	s.Refresh()
	return s
}

// Refresh unconditionally reloads the cache from the backing file and
// returns the number of rows loaded.
func (s *Store) Refresh() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked()
	return len(s.products)
}

func (s *Store) reloadLocked() {
	s.products = s.loadAll()
	s.loadedAt = time.Now()
}

// loadAll parses the table export. An absent or unreadable file yields
// an empty list rather than an error; malformed and title-less rows are
// skipped without failing the load.
func (s *Store) loadAll() []Product {
	f, err := os.Open(s.csvPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("product table unreadable", zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil
	}
	idx := columnIndex(header)

	var out []Product
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		p, ok := productFromRow(func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		})
		if ok {
			out = append(out, p)
		}
	}

	return out
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// maybeReload replaces the whole cache when it is older than maxAge.
// There is no per-entry invalidation.
func (s *Store) maybeReload() {
	s.mu.RLock()
	stale := time.Since(s.loadedAt) > s.maxAge
	s.mu.RUnlock()

	if stale {
		s.Refresh()
	}
}

// snapshot returns the current cached product list. Callers must not
// mutate the returned slice.
func (s *Store) snapshot() []Product {
	s.maybeReload()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *Store) Get(id string) (Product, error) {
	for _, p := range s.snapshot() {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// All returns every loaded product, hidden or not.
func (s *Store) All() []Product {
	return s.snapshot()
}

func (s *Store) Count() int {
	return len(s.snapshot())
}

// ListVisible partitions out products absent from the hidden set. The
// hidden-set file is re-read on every call; the overlay itself is never
// cached.
func (s *Store) ListVisible() []Product {
	hidden := s.loadHidden()
	var out []Product
	for _, p := range s.snapshot() {
		if _, ok := hidden[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) ListHidden() []Product {
	hidden := s.loadHidden()
	var out []Product
	for _, p := range s.snapshot() {
		if _, ok := hidden[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// IsHidden reports current hidden-set membership for id.
func (s *Store) IsHidden(id string) bool {
	_, ok := s.loadHidden()[id]
	return ok
}
