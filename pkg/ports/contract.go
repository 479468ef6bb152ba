package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	uri := "file:///contract/" + time.Now().Format("20060102150405") + ".pc"

	tree := &vdom.Fragment{Children: []vdom.Node{
		&vdom.Element{
			ID:         "abc-2",
			SourceURI:  uri,
			TagName:    "div",
			Attributes: []vdom.Attribute{{ID: "abc-1", Name: "class", Value: vdom.StringPtr("box")}},
			Children:   []vdom.Node{&vdom.Text{ID: "abc-3", Value: "hello"}},
		},
	}}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, uri, tree), "Save should not return error")

		loaded, err := store.Load(ctx, uri)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, vdom.HTML(tree), vdom.HTML(loaded))
		assert.Equal(t, vdom.IDs(tree), vdom.IDs(loaded))
	})

	t.Run("Save replaces", func(t *testing.T) {
		next := &vdom.Text{ID: "abc-9", Value: "replaced"}
		require.NoError(t, store.Save(ctx, uri, next))

		loaded, err := store.Load(ctx, uri)
		require.NoError(t, err)
		assert.Equal(t, "replaced", vdom.HTML(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, uri+".missing")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, uri, tree))
		require.NoError(t, store.Delete(ctx, uri), "Delete should not return error")

		_, err := store.Load(ctx, uri)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		uri1 := uri + "-1"
		uri2 := uri + "-2"
		_ = store.Save(ctx, uri1, tree)
		_ = store.Save(ctx, uri2, tree)

		defer func() {
			_ = store.Delete(ctx, uri1)
			_ = store.Delete(ctx, uri2)
		}()

		uris, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, uris, uri1)
		assert.Contains(t, uris, uri2)
	})
}
