package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kainat5008/Traffic-System-OS/service/dao"
)

type account struct {
	ID     string
	Status string
}

func newAccountStore() *MemoryStore[string, account] {
	return NewMemoryStore[string, account](func(a *account) string { return a.ID }).
		WithMatcher(func(a *account, parameters []*dao.Parameter) bool {
			for _, p := range parameters {
				if p.Name == "status" && a.Status != p.Value.(string) {
					return false
				}
			}
			return true
		})
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newAccountStore()

	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, store.Save(ctx, &account{ID: "a1", Status: "open"}))
	require.NoError(t, store.Save(ctx, &account{ID: "a2", Status: "closed"}))
	assert.Equal(t, 2, store.Len())

	loaded, err = store.Load(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "open", loaded.Status)

	// Save overwrites by key.
	require.NoError(t, store.Save(ctx, &account{ID: "a1", Status: "closed"}))
	loaded, err = store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "closed", loaded.Status)
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.Delete(ctx, "a1"))
	loaded, err = store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStoreSaveNil(t *testing.T) {
	store := newAccountStore()
	assert.ErrorIs(t, store.Save(context.Background(), nil), dao.ErrNilEntity)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := newAccountStore()
	require.NoError(t, store.Save(ctx, &account{ID: "a1", Status: "open"}))
	require.NoError(t, store.Save(ctx, &account{ID: "a2", Status: "closed"}))
	require.NoError(t, store.Save(ctx, &account{ID: "a3", Status: "open"}))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	open, err := store.List(ctx, dao.NewParameter("status", "open"))
	require.NoError(t, err)
	assert.Len(t, open, 2)
}
