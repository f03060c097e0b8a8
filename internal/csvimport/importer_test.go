package csvimport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/model"
)

type fakeInserter struct {
	inserted []model.Contact
	failAt   int
	err      error
}

func (f *fakeInserter) InsertContacts(_ context.Context, contacts []model.Contact) (int, error) {
	if f.err != nil {
		stop := f.failAt
		if stop > len(contacts) {
			stop = len(contacts)
		}
		f.inserted = append(f.inserted, contacts[:stop]...)
		return stop, f.err
	}
	f.inserted = append(f.inserted, contacts...)
	return len(contacts), nil
}

func TestImportNormalizesRows(t *testing.T) {
	store := &fakeInserter{}
	importer := NewImporter(store)

	count, err := importer.Import(context.Background(), "owner-1", "company_name,company_phone\nAcme,555-1111\nXYZ,555-2222")
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Len(t, store.inserted, 2)

	first := store.inserted[0]
	assert.Equal(t, "owner-1", first.UserID)
	assert.Equal(t, model.StatusNew, first.Status)
	assert.Empty(t, first.FirstName)
	assert.Empty(t, first.LastName)
	assert.Empty(t, first.Email)
	assert.Equal(t, "Acme", first.Company.Name)
	assert.Equal(t, "555-1111", first.Company.Phone)
	assert.Equal(t, "555-1111", first.Phone)
	assert.Empty(t, first.Notes)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	assert.Equal(t, "XYZ", store.inserted[1].Company.Name)
}

func TestImportMissingColumnImportsNothing(t *testing.T) {
	store := &fakeInserter{}
	importer := NewImporter(store)

	count, err := importer.Import(context.Background(), "owner-1", "company_phone\n555-1111")
	require.ErrorIs(t, err, ErrMissingRequiredColumn)
	assert.Zero(t, count)
	assert.Empty(t, store.inserted)
}

func TestImportSkipsOnlyShortRows(t *testing.T) {
	store := &fakeInserter{}
	importer := NewImporter(store)

	text := "company_name,company_address,company_phone,company_website\n" +
		"Acme,12 Main St\n" +
		"XYZ,9 High St,555-2222,xyz.test\n" +
		"Initech,1 Office Park,555-3333,initech.test\n"
	count, err := importer.Import(context.Background(), "owner-1", text)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, store.inserted, 2)
	assert.Equal(t, "XYZ", store.inserted[0].Company.Name)
	assert.Equal(t, "Initech", store.inserted[1].Company.Name)
}

func TestImportAllRowsInvalidIsNoOp(t *testing.T) {
	store := &fakeInserter{}
	importer := NewImporter(store)

	count, err := importer.Import(context.Background(), "owner-1", "company_name,company_phone\nAcme")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, store.inserted)
}

// Re-importing the same file produces a second independent batch; there
// is no duplicate detection by design.
func TestImportTwiceDoesNotDedup(t *testing.T) {
	store := &fakeInserter{}
	importer := NewImporter(store)
	text := "company_name,company_phone\nAcme,555-1111"

	for i := 0; i < 2; i++ {
		count, err := importer.Import(context.Background(), "owner-1", text)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	}
	require.Len(t, store.inserted, 2)
	assert.NotEqual(t, store.inserted[0].ID, store.inserted[1].ID)
}

func TestImportReportsPartialSuccess(t *testing.T) {
	storeErr := errors.New("insert rejected")
	store := &fakeInserter{failAt: 1, err: storeErr}
	importer := NewImporter(store)

	count, err := importer.Import(context.Background(), "owner-1", "company_name\nAcme\nXYZ")
	require.ErrorIs(t, err, storeErr)
	assert.Equal(t, 1, count)
}
