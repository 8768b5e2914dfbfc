package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabuladb/tabula/internal/sql/parser"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
	"github.com/tabuladb/tabula/internal/table"
)

func newTable(t *testing.T, name string) *table.Table {
	t.Helper()
	schema, err := table.NewSchema([]table.Column{
		{Name: "id", Type: parser.TypeInteger},
	})
	require.NoError(t, err)
	return table.New(name, schema)
}

func TestCreateAndGet(t *testing.T) {
	cat := New()
	require.NoError(t, cat.Create(newTable(t, "friends")))

	tbl, err := cat.Get("friends")
	require.NoError(t, err)
	assert.Equal(t, "friends", tbl.Name)

	// Lookup is case-insensitive
	tbl, err = cat.Get("FRIENDS")
	require.NoError(t, err)
	assert.Equal(t, "friends", tbl.Name)
}

func TestCreateDuplicate(t *testing.T) {
	cat := New()
	require.NoError(t, cat.Create(newTable(t, "friends")))

	err := cat.Create(newTable(t, "Friends"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
}

func TestGetUnknown(t *testing.T) {
	cat := New()
	_, err := cat.Get("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
}

func TestDrop(t *testing.T) {
	cat := New()
	require.NoError(t, cat.Create(newTable(t, "friends")))
	require.NoError(t, cat.Drop("friends"))

	_, err := cat.Get("friends")
	require.Error(t, err)

	err = cat.Drop("friends")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
}

func TestListPreservesCreationOrder(t *testing.T) {
	cat := New()
	for _, name := range []string{"movies", "friends", "celebs"} {
		require.NoError(t, cat.Create(newTable(t, name)))
	}

	assert.Equal(t, []string{"movies", "friends", "celebs"}, cat.List())

	require.NoError(t, cat.Drop("friends"))
	assert.Equal(t, []string{"movies", "celebs"}, cat.List())
}
