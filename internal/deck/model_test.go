package deck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feakit/bulkgridgo/internal/carddef"
)

func coordDef(cardType string) *carddef.CardDef {
	return &carddef.CardDef{
		Type:   cardType,
		Entity: "coordinate_system",
		Fields: []*carddef.FieldDef{
			{Name: "cid", Kind: carddef.KindInteger, Repeat: 1},
			{Name: "a", Kind: carddef.KindReal, Repeat: 3},
		},
	}
}

func TestModel_CreateOrExtend(t *testing.T) {
	t.Parallel()

	def := nodeDef()
	checks := registerDef(t, def)
	m := NewModel()

	c, start := m.CreateOrExtend(def, 2, checks)
	require.Equal(t, 0, start)
	require.Equal(t, 2, c.Rows())

	c2, start2 := m.CreateOrExtend(def, 3, nil)
	require.Same(t, c, c2, "same card type must reuse the collection")
	require.Equal(t, 2, start2, "second block starts where the first ended")
	require.Equal(t, 5, c.Rows())
}

func TestModel_OrderAndLookup(t *testing.T) {
	t.Parallel()

	reg := carddef.New()
	grid := nodeDef()
	cord := coordDef("CORD2R")
	require.NoError(t, reg.Register(grid))
	require.NoError(t, reg.Register(cord))

	m := NewModel()
	m.CreateOrExtend(grid, 1, nil)
	m.CreateOrExtend(cord, 1, nil)

	require.Equal(t, []string{"GRID", "CORD2R"}, m.Names())

	got, ok := m.Get("GRID")
	require.True(t, ok)
	require.Equal(t, "GRID", got.Type())

	_, ok = m.Get("MAT1")
	require.False(t, ok)

	colls := m.Collections()
	require.Len(t, colls, 2)
	require.Equal(t, "GRID", colls[0].Type())
	require.Equal(t, "CORD2R", colls[1].Type())
}

func TestModel_ByEntity(t *testing.T) {
	t.Parallel()

	reg := carddef.New()
	grid := nodeDef()
	c2r := coordDef("CORD2R")
	c1r := coordDef("CORD1R")
	require.NoError(t, reg.Register(grid))
	require.NoError(t, reg.Register(c2r))
	require.NoError(t, reg.Register(c1r))

	m := NewModel()
	m.CreateOrExtend(c2r, 1, nil)
	m.CreateOrExtend(grid, 1, nil)
	m.CreateOrExtend(c1r, 1, nil)

	coords := m.ByEntity("coordinate_system")
	require.Len(t, coords, 2)
	require.Equal(t, "CORD2R", coords[0].Type())
	require.Equal(t, "CORD1R", coords[1].Type())

	require.Empty(t, m.ByEntity("beam"))
}

func TestModel_AddDuplicate(t *testing.T) {
	t.Parallel()

	def := nodeDef()
	registerDef(t, def)

	m := NewModel()
	require.NoError(t, m.Add(New(def, 0, nil)))
	require.Error(t, m.Add(New(def, 0, nil)))
}
