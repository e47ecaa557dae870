package manager_test

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/query/operations/testutil"
	"github.com/leengari/stripetable/internal/storage/manager"
	"github.com/leengari/stripetable/internal/storage/marshal"
)

func newRegistry(t *testing.T, format marshal.Format) *manager.Registry {
	t.Helper()
	return manager.NewRegistry(t.TempDir(), format, marshal.DefaultOptions())
}

func TestRegistry_CreateAndReload(t *testing.T) {
	for _, f := range []marshal.Format{marshal.CSV, marshal.JSON, marshal.XLSX} {
		t.Run(string(f), func(t *testing.T) {
			base := t.TempDir()
			orders := testutil.CreateOrdersTable()
			assert.NilError(t, orders.SetRowTitle(2, "last"))

			reg := manager.NewRegistry(base, f, marshal.DefaultOptions())
			assert.NilError(t, reg.Create("orders", orders))

			_, err := os.Stat(filepath.Join(base, "orders", "meta.json"))
			assert.NilError(t, err)
			_, err = os.Stat(filepath.Join(base, "orders", "data."+f.Ext()))
			assert.NilError(t, err)

			// a fresh registry has nothing cached and must read from disk
			fresh := manager.NewRegistry(base, f, marshal.DefaultOptions())
			loaded, err := fresh.Get("orders")
			assert.NilError(t, err)
			assert.Assert(t, table.EqualContent(loaded, orders))
			assert.Equal(t, loaded.ID(), orders.ID())

			again, err := fresh.Get("orders")
			assert.NilError(t, err)
			assert.Assert(t, again == loaded)
		})
	}
}

func TestRegistry_Meta(t *testing.T) {
	reg := newRegistry(t, marshal.CSV)
	assert.NilError(t, reg.Create("users", testutil.CreateUsersTable()))

	meta, err := reg.Meta("users")
	assert.NilError(t, err)
	assert.Equal(t, meta.Name, "users")
	assert.Equal(t, meta.Format, "csv")
	assert.Equal(t, meta.RowCount, 3)
	assert.Equal(t, meta.ColumnCount, 3)
	assert.Equal(t, meta.Delimiter, ",")
	assert.Assert(t, meta.ColumnTitles)
	assert.Assert(t, !meta.RowTitles)
}

func TestRegistry_SaveAfterChange(t *testing.T) {
	base := t.TempDir()
	reg := manager.NewRegistry(base, marshal.YAML, marshal.DefaultOptions())
	users := testutil.CreateUsersTable()
	assert.NilError(t, reg.Create("users", users))

	assert.NilError(t, users.AddRow(int64(4), "dave", "dave@example.com"))
	assert.NilError(t, reg.SaveAll())

	loaded, err := manager.NewRegistry(base, marshal.YAML, marshal.DefaultOptions()).Get("users")
	assert.NilError(t, err)
	testutil.AssertRowCount(t, loaded.RowCount(), 4, "after save")
}

func TestRegistry_ListDropRename(t *testing.T) {
	reg := newRegistry(t, marshal.Text)
	assert.NilError(t, reg.Create("users", testutil.CreateUsersTable()))
	assert.NilError(t, reg.Create("orders", testutil.CreateOrdersTable()))

	names, err := reg.List()
	assert.NilError(t, err)
	assert.DeepEqual(t, names, []string{"orders", "users"})

	assert.NilError(t, reg.Rename("orders", "purchases"))
	purchases, err := reg.Get("purchases")
	assert.NilError(t, err)
	assert.Equal(t, purchases.Name(), "purchases")

	assert.NilError(t, reg.Drop("users"))
	names, err = reg.List()
	assert.NilError(t, err)
	assert.DeepEqual(t, names, []string{"purchases"})

	_, err = reg.Get("users")
	assert.ErrorContains(t, err, "does not exist")
	assert.ErrorContains(t, reg.Drop("users"), "does not exist")
}

func TestRegistry_Errors(t *testing.T) {
	reg := newRegistry(t, marshal.CSV)
	users := testutil.CreateUsersTable()

	assert.ErrorContains(t, reg.Create("../escape", users), "invalid table name")
	assert.NilError(t, reg.Create("users", users))
	assert.ErrorContains(t, reg.Create("users", users), "already exists")
	assert.ErrorContains(t, reg.Save("missing"), "not loaded")

	names, err := manager.NewRegistry(filepath.Join(t.TempDir(), "nope"), marshal.CSV, marshal.DefaultOptions()).List()
	assert.NilError(t, err)
	assert.Assert(t, is.Len(names, 0))
}

func TestRegistry_RenameStaysInsideBasePath(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "outside")
	assert.NilError(t, os.Mkdir(outside, 0755))
	reg := manager.NewRegistry(filepath.Join(root, "base"), marshal.CSV, marshal.DefaultOptions())
	assert.NilError(t, reg.Create("users", testutil.CreateUsersTable()))

	assert.ErrorContains(t, reg.Rename("../outside", "moved"), "invalid table name")
	assert.ErrorContains(t, reg.Rename("users", "../moved"), "invalid table name")

	_, err := os.Stat(outside)
	assert.NilError(t, err)
	_, err = os.Stat(filepath.Join(root, "base", "moved"))
	assert.Assert(t, os.IsNotExist(err))
}
