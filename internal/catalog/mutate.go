package catalog

import (
	"encoding/csv"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Update overwrites only the named columns of the row matching id,
// rewrites the whole table file and synchronously reloads the cache.
// The file is left untouched and ErrNotFound returned when the id is
// absent from the backing file.
func (s *Store) Update(id string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, records, err := s.readTable()
	if err != nil {
		return err
	}
	idx := columnIndex(header)

	idCol, ok := idx[ColID]
	if !ok {
		return ErrNotFound
	}

	found := false
	for i, rec := range records {
		if idCol >= len(rec) || strings.TrimSpace(rec[idCol]) != id {
			continue
		}
		// The reader accepts ragged rows; pad to the header width so an
		// update targeting a trailing column is never silently dropped.
		if len(rec) < len(header) {
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
			records[i] = rec
		}
		for col, val := range fields {
			if j, ok := idx[col]; ok && j < len(rec) {
				rec[j] = val
			}
		}
		found = true
		break
	}
	if !found {
		return ErrNotFound
	}

	if err := s.writeTable(header, records); err != nil {
		return err
	}

	s.reloadLocked()
	return nil
}

// Append writes a new row using the existing file's column order, or
// the default column set when the file does not exist yet, then
// reloads the cache. Returns the generated product id.
func (s *Store) Append(fields map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := defaultColumns
	exists := true

	if h, _, err := s.readTable(); err == nil {
		header = h
	} else if os.IsNotExist(err) {
		exists = false
	} else {
		return "", err
	}

	id := s.freshIDLocked()

	rec := make([]string, len(header))
	for i, col := range header {
		if col == ColID {
			rec[i] = id
			continue
		}
		rec[i] = fields[col]
	}

	flags := os.O_WRONLY | os.O_APPEND | os.O_CREATE
	f, err := os.OpenFile(s.csvPath, flags, 0o644)
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if !exists {
		if err := w.Write(header); err != nil {
			f.Close()
			return "", err
		}
	}
	if err := w.Write(rec); err != nil {
		f.Close()
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	s.reloadLocked()
	return id, nil
}

// freshIDLocked derives a 12-digit numeric id from a random uuid,
// retrying on the off chance it collides with a loaded row.
func (s *Store) freshIDLocked() string {
	for {
		u := uuid.New()
		digits := new(big.Int).SetBytes(u[:]).String()
		if len(digits) < 12 {
			continue
		}
		id := digits[:12]

		taken := false
		for _, p := range s.products {
			if p.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

func (s *Store) readTable() ([]string, [][]string, error) {
	f, err := os.Open(s.csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func (s *Store) writeTable(header []string, records [][]string) error {
	f, err := os.Create(s.csvPath)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
