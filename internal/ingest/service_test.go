package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 2, 13, 10, 24, 0, 0, time.UTC)

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store).WithClock(func() time.Time { return fixedNow }), store
}

func TestIngest_StoresAndReturnsPreview(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	csv := "sku,qty\nA,1\nB,2\nC,3\nD,4\nE,5"
	res, err := svc.Ingest(ctx, "inventory", "stock.csv", csv)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "inventory", res.Category)
	assert.Equal(t, "stock.csv", res.FileName)
	assert.Equal(t, []string{"sku", "qty"}, res.Headers)
	assert.Equal(t, 5, res.RowCount)
	require.Len(t, res.Preview, PreviewRows)
	assert.Equal(t, "C", res.Preview[2]["sku"])

	rec, err := store.Get(ctx, "inventory")
	require.NoError(t, err)
	assert.Len(t, rec.Rows, 5)
	assert.Equal(t, fixedNow, rec.UploadedAt)
}

func TestIngest_PreviewShorterThanThree(t *testing.T) {
	svc, _ := newTestService()

	res, err := svc.Ingest(context.Background(), "sales", "s.csv", "a\n1")
	require.NoError(t, err)
	assert.Len(t, res.Preview, 1)
}

func TestIngest_RejectsNonCSVExtension(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	for _, name := range []string{"data.txt", "data.CSV", "data.csv.bak"} {
		_, err := svc.Ingest(ctx, "sales", name, "a,b\n1,2")
		assert.ErrorIs(t, err, ErrInvalidFileType, name)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngest_MissingFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "", "a.csv", "a\n1")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Ingest(ctx, "sales", "", "a\n1")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.IngestReader(ctx, "sales", "a.csv", nil)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestIngest_EmptyFileLeavesStoreUntouched(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "sales", "first.csv", "a\n1")
	require.NoError(t, err)

	_, err = svc.Ingest(ctx, "sales", "empty.csv", "  \n ")
	assert.ErrorIs(t, err, ErrEmptyFile)

	rec, err := store.Get(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "first.csv", rec.FileName)
}

func TestIngest_InvalidEncodingIsInternal(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "sales", "bad.csv", "a,b\n\xff\xfe,1")
	assert.ErrorIs(t, err, ErrInternal)

	_, err = store.Get(ctx, "sales")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngest_OverwriteKeepsOnlyLatest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "sales", "jan.csv", "a,b\n1,2")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "inventory", "stock.csv", "sku\nA")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "sales", "feb.csv", "x,y,z\n1,2,3\n4,5,6")
	require.NoError(t, err)

	uploads, err := svc.ListUploads(ctx)
	require.NoError(t, err)
	require.Len(t, uploads, 2)

	assert.Equal(t, "sales", uploads[0].Category)
	assert.Equal(t, "feb.csv", uploads[0].FileName)
	assert.Equal(t, 2, uploads[0].RowCount)
	assert.Equal(t, []string{"x", "y", "z"}, uploads[0].Headers)
	assert.Equal(t, "inventory", uploads[1].Category)
}

func TestIngest_CategoryIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "sales", "a.csv", "a\n1")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "Sales", "b.csv", "a\n1")
	require.NoError(t, err)

	uploads, err := svc.ListUploads(ctx)
	require.NoError(t, err)
	assert.Len(t, uploads, 2)
}

func TestIngestReader_ReadFailure(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.IngestReader(context.Background(), "sales", "a.csv", failingReader{})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestIngestReader_ChecksExtensionBeforeReading(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.IngestReader(context.Background(), "sales", "a.xlsx", failingReader{})
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestIngest_StoreFailureIsInternal(t *testing.T) {
	svc := NewService(brokenStore{})

	_, err := svc.IngestReader(context.Background(), "sales", "a.csv", strings.NewReader("a\n1"))
	assert.ErrorIs(t, err, ErrInternal)

	_, err = svc.ListUploads(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), "pricing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUploads_EmptyStore(t *testing.T) {
	svc, _ := newTestService()

	uploads, err := svc.ListUploads(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, uploads)
	assert.Empty(t, uploads)
}

func TestCategories_SixKnown(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 6)
	assert.Equal(t, "sales", cats[0].ID)

	cats[0].ID = "mutated"
	assert.Equal(t, "sales", Categories()[0].ID)
}

func TestIsCategory(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, IsCategory(c.ID), c.ID)
	}
	assert.False(t, IsCategory("Sales"))
	assert.False(t, IsCategory(""))
	assert.False(t, IsCategory("custom"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*Record, error) { return nil, errors.New("down") }
func (brokenStore) Put(context.Context, *Record) error           { return errors.New("down") }
func (brokenStore) List(context.Context) ([]*Record, error)      { return nil, errors.New("down") }
