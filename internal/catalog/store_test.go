package catalog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testHeader = []string{
	ColID, ColBrand, ColSKU, ColMark, ColCategory, ColTitle, ColDescription, ColText, ColPhoto,
}

func writeTable(t *testing.T, path string, rows ...[]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	require.NoError(t, w.Write(testHeader))
	for _, r := range rows {
		require.NoError(t, w.Write(r))
	}
	w.Flush()
	require.NoError(t, w.Error())
}

func newTestStore(t *testing.T, rows ...[]string) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	if rows != nil {
		writeTable(t, csvPath, rows...)
	}

	s := NewStore(csvPath, filepath.Join(dir, "hidden_products.json"), time.Hour, zap.NewNop())
	return s, csvPath
}

func TestLoadAll_SkipsTitlelessRows(t *testing.T) {
	s, _ := newTestStore(t,
		[]string{"p1", "Acme", "SKU1", "DIN 965", "Screws; Hardware", "Wood screw", "A screw", "", "img1.jpg"},
		[]string{"p2", "", "", "", "Bolts", "", "no title, must be skipped", "", ""},
		[]string{"p3", "", "SKU3", "", "Bolts", "Hex bolt", "", "fallback text", ""},
	)

	all := s.All()
	require.Len(t, all, 2)

	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, "Wood screw", all[0].Name)
	assert.Equal(t, "Screws", all[0].Category, "category keeps only the first segment")
	assert.Equal(t, "DIN 965", all[0].Standard)

	assert.Equal(t, "p3", all[1].ID)
	assert.Equal(t, "fallback text", all[1].Description, "description falls back to the Text column")
}

func TestLoadAll_MissingFile(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Zero(t, s.Count())
	assert.Empty(t, s.ListVisible())
}

func TestGet(t *testing.T) {
	s, _ := newTestStore(t,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
	)

	p, err := s.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "Wood screw", p.Name)

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHideShow_PartitionAndIdempotence(t *testing.T) {
	s, _ := newTestStore(t,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
		[]string{"p2", "", "", "", "Bolts", "Hex bolt", "", "", ""},
	)

	require.NoError(t, s.Hide("p1"))

	visible := s.ListVisible()
	require.Len(t, visible, 1)
	assert.Equal(t, "p2", visible[0].ID)

	hidden := s.ListHidden()
	require.Len(t, hidden, 1)
	assert.Equal(t, "p1", hidden[0].ID)
	assert.True(t, s.IsHidden("p1"))

	// Hiding again still succeeds.
	require.NoError(t, s.Hide("p1"))
	assert.Len(t, s.ListHidden(), 1)

	require.NoError(t, s.Show("p1"))
	assert.Len(t, s.ListVisible(), 2)
	assert.False(t, s.IsHidden("p1"))

	// Showing an id that is not hidden still succeeds.
	require.NoError(t, s.Show("p1"))
	assert.Len(t, s.ListVisible(), 2)
}

func TestHide_StaleIDIsNoOpOnListings(t *testing.T) {
	s, _ := newTestStore(t,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
	)

	require.NoError(t, s.Hide("ghost"))

	assert.Len(t, s.ListVisible(), 1)
	assert.Empty(t, s.ListHidden())
}

func readRawTable(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	require.NoError(t, err)
	return recs
}

func TestUpdate_ChangesOnlyTargetedFields(t *testing.T) {
	s, csvPath := newTestStore(t,
		[]string{"p1", "Acme", "SKU1", "DIN 965", "Screws", "Wood screw", "desc", "text", "img.jpg"},
		[]string{"p2", "Bolt Co", "SKU2", "", "Bolts", "Hex bolt", "", "", ""},
	)

	require.NoError(t, s.Update("p1", map[string]string{ColTitle: "Steel screw"}))

	recs := readRawTable(t, csvPath)
	require.Len(t, recs, 3)

	assert.Equal(t, "Steel screw", recs[1][5])
	assert.Equal(t, []string{"p1", "Acme", "SKU1", "DIN 965", "Screws", "Steel screw", "desc", "text", "img.jpg"}, recs[1])
	assert.Equal(t, []string{"p2", "Bolt Co", "SKU2", "", "Bolts", "Hex bolt", "", "", ""}, recs[2],
		"untouched rows stay identical")

	// The in-memory cache was reloaded synchronously.
	p, err := s.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "Steel screw", p.Name)
}

func TestUpdate_PadsShortRowsToHeaderWidth(t *testing.T) {
	s, csvPath := newTestStore(t,
		[]string{"p1", "Acme", "SKU1", "", "Screws", "Wood screw"},
	)

	// ColPhoto sits past the end of the ragged row.
	require.NoError(t, s.Update("p1", map[string]string{ColPhoto: "img.jpg"}))

	recs := readRawTable(t, csvPath)
	require.Len(t, recs, 2)
	require.Len(t, recs[1], len(testHeader), "row is padded to the header width")
	assert.Equal(t, "img.jpg", recs[1][8])

	p, err := s.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "img.jpg", p.Image)
}

func TestUpdate_UnknownIDLeavesFileUnchanged(t *testing.T) {
	s, csvPath := newTestStore(t,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
	)
	before, err := os.ReadFile(csvPath)
	require.NoError(t, err)

	err = s.Update("nope", map[string]string{ColTitle: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAppend_ExistingFileKeepsHeaderOrder(t *testing.T) {
	s, csvPath := newTestStore(t,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
	)

	id, err := s.Append(map[string]string{
		ColTitle:    "Anchor bolt",
		ColCategory: "Bolts",
		ColBrand:    "Acme",
	})
	require.NoError(t, err)
	require.Len(t, id, 12)

	recs := readRawTable(t, csvPath)
	require.Len(t, recs, 3)
	assert.Equal(t, testHeader, recs[0], "header is not rewritten")
	assert.Equal(t, id, recs[2][0])
	assert.Equal(t, "Anchor bolt", recs[2][5])

	p, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Anchor bolt", p.Name)
	assert.NotEqual(t, "p1", p.ID)
}

func TestAppend_CreatesFileWithDefaultColumns(t *testing.T) {
	s, csvPath := newTestStore(t)

	id, err := s.Append(map[string]string{
		ColTitle:    "Anchor bolt",
		ColCategory: "Bolts",
	})
	require.NoError(t, err)

	recs := readRawTable(t, csvPath)
	require.Len(t, recs, 2)
	assert.Equal(t, defaultColumns, recs[0])

	assert.Equal(t, 1, s.Count())
	p, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Bolts", p.Category)
}

func TestStalenessReload(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	writeTable(t, csvPath,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
	)

	s := NewStore(csvPath, filepath.Join(dir, "hidden.json"), time.Nanosecond, zap.NewNop())

	writeTable(t, csvPath,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
		[]string{"p2", "", "", "", "Bolts", "Hex bolt", "", "", ""},
	)

	time.Sleep(time.Millisecond)
	assert.Equal(t, 2, s.Count(), "stale cache reloads on read")
}

func TestRefresh_ReturnsCount(t *testing.T) {
	s, csvPath := newTestStore(t,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
	)

	writeTable(t, csvPath,
		[]string{"p1", "", "", "", "Screws", "Wood screw", "", "", ""},
		[]string{"p2", "", "", "", "Bolts", "Hex bolt", "", "", ""},
	)

	assert.Equal(t, 2, s.Refresh())
}
