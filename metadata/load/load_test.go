package load_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxext/metadata"
	"github.com/syssam/veloxext/metadata/load"
)

func TestLoad(t *testing.T) {
	g, err := load.Load(context.Background(), "testdata/shop.yaml", "testdata/crm.json")
	require.NoError(t, err)

	var names []string
	for _, e := range g.Entities() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Person", "Manager", "Order", "Tag", "Customer"}, names)
	assert.Equal(t, []string{"crm", "main"}, g.Stores())

	order := g.Entity("Order")
	require.NotNil(t, order)
	assert.Equal(t, "orders", order.Table)
	assert.True(t, g.IsSoftDeletable(order))
	assert.Equal(t, metadata.ManyToMany, order.Property("tags").Cardinality)
	assert.True(t, order.Property("customer").Nullable)
	assert.Equal(t, "customerId", g.CrossStoreReferenceID("main", order.Property("customer")))

	manager := g.Entity("Manager")
	require.NotNil(t, manager)
	col, ok := g.DeletedDateColumn(manager)
	assert.True(t, ok)
	assert.Equal(t, "deleted_date", col)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("NoFiles", func(t *testing.T) {
		_, err := load.Load(ctx)
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := load.Load(ctx, "testdata/shop.yaml", "testdata/missing.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := load.Load(ctx, "testdata/unknown_key.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "testdata/unknown_key.yaml")
	})

	t.Run("BadCardinality", func(t *testing.T) {
		_, err := load.Load(ctx, "testdata/bad_cardinality.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, metadata.ErrInvalidSchema))
		assert.Contains(t, err.Error(), `unknown cardinality "lots"`)
	})

	t.Run("DanglingTarget", func(t *testing.T) {
		// Customer lives in crm.json.
		_, err := load.Load(ctx, "testdata/shop.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown target entity "Customer"`)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := load.Load(ctx, "testdata/shop.yaml")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParse(t *testing.T) {
	doc, err := load.Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Entities)

	doc, err = load.Parse([]byte(`
entities:
  - name: A
    properties:
      - {name: b, cardinality: one_to_many, target: B}
  - name: B
`))
	require.NoError(t, err)
	entities, err := doc.Convert()
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, metadata.OneToMany, entities[0].Declared[0].Cardinality)

	g, err := doc.Graph()
	require.NoError(t, err)
	assert.Equal(t, "B", g.Entity("A").Property("b").TargetEntity().Name)
}
