package deck

import (
	"fmt"

	"github.com/feakit/bulkgridgo/internal/carddef"
)

// Model is the ordered set of populated collections one import produces,
// keyed by card type, plus the deck's parameter table.
type Model struct {
	order  []string
	colls  map[string]*Collection
	Params *Params
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		colls:  make(map[string]*Collection),
		Params: NewParams(),
	}
}

// Add registers a collection under its card type. Each type appears at most
// once per model.
func (m *Model) Add(c *Collection) error {
	if _, dup := m.colls[c.Type()]; dup {
		return fmt.Errorf("model already holds a %s collection", c.Type())
	}
	m.colls[c.Type()] = c
	m.order = append(m.order, c.Type())
	return nil
}

// Get returns the collection for a card type.
func (m *Model) Get(cardType string) (*Collection, bool) {
	c, ok := m.colls[cardType]
	return c, ok
}

// Names returns the stored card types in first-seen order.
func (m *Model) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Collections returns every collection in first-seen order.
func (m *Model) Collections() []*Collection {
	out := make([]*Collection, 0, len(m.order))
	for _, t := range m.order {
		out = append(out, m.colls[t])
	}
	return out
}

// ByEntity returns the collections whose schema carries the given entity
// class tag, in first-seen order. Index resolution uses this to fall back
// from a missing card type target to its entity class.
func (m *Model) ByEntity(entity string) []*Collection {
	var out []*Collection
	for _, t := range m.order {
		if m.colls[t].Entity() == entity {
			out = append(out, m.colls[t])
		}
	}
	return out
}

// CreateOrExtend returns the collection for def with rows fresh
// default-filled rows appended, creating the collection on first use, plus
// the row index the new block starts at. The checks map is consulted only on
// creation.
func (m *Model) CreateOrExtend(def *carddef.CardDef, rows int, checks map[string]carddef.CheckFunc) (*Collection, int) {
	if c, ok := m.colls[def.Type]; ok {
		start := c.Rows()
		c.Extend(rows)
		return c, start
	}
	c := New(def, rows, checks)
	m.colls[def.Type] = c
	m.order = append(m.order, def.Type)
	return c, 0
}
