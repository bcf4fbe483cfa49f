package catalog

import (
	"encoding/json"
	"os"
	"sort"

	"go.uber.org/zap"
)

// hiddenFile is the on-disk shape of the hidden-product overlay. The
// document is read and rewritten in full on every mutation.
type hiddenFile struct {
	HiddenProducts []string `json:"hidden_products"`
}

func (s *Store) loadHidden() map[string]struct{} {
	set := make(map[string]struct{})

	data, err := os.ReadFile(s.hiddenPath)
	if err != nil {
		return set
	}

	var hf hiddenFile
	if err := json.Unmarshal(data, &hf); err != nil {
		s.log.Warn("hidden set unparsable", zap.Error(err))
		return set
	}

	for _, id := range hf.HiddenProducts {
		set[id] = struct{}{}
	}
	return set
}

func (s *Store) saveHiddenLocked(set map[string]struct{}) error {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.MarshalIndent(hiddenFile{HiddenProducts: ids}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.hiddenPath, data, 0o644)
}

// Hide adds id to the hidden set. Hiding an already-hidden id still
// succeeds and rewrites the file. Membership is not validated against
// the loaded product set; a stale id is a silent no-op on listings.
func (s *Store) Hide(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.loadHidden()
	set[id] = struct{}{}
	return s.saveHiddenLocked(set)
}

// Show removes id from the hidden set; removing an absent id succeeds.
func (s *Store) Show(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.loadHidden()
	delete(set, id)
	return s.saveHiddenLocked(set)
}
