package deck

import (
	"fmt"

	"github.com/feakit/bulkgridgo/internal/carddef"
)

// ValidationError reports a field value rejected by a schema check while a
// collection was being populated. It is fatal to the import.
type ValidationError struct {
	Card  string
	Field string
	Row   int
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s row %d: field %q: value %v: %s", e.Card, e.Row, e.Field, e.Value, e.Msg)
}

// column is the typed storage behind one schema field. Scalar and vector
// fields flatten rows*slots values row-major; list-tail fields keep one
// ragged slice per row. New rows come up prefilled with the field default.
type column interface {
	grow(rows int)
}

func appendFilled[T comparable](s []T, n int, fill T) []T {
	var zero T
	start := len(s)
	s = append(s, make([]T, n)...)
	if fill != zero {
		for i := start; i < len(s); i++ {
			s[i] = fill
		}
	}
	return s
}

type intColumn struct {
	slots int
	fill  int64
	vals  []int64
}

func (c *intColumn) grow(rows int) { c.vals = appendFilled(c.vals, rows*c.slots, c.fill) }

type realColumn struct {
	slots int
	fill  float64
	vals  []float64
}

func (c *realColumn) grow(rows int) { c.vals = appendFilled(c.vals, rows*c.slots, c.fill) }

type labelColumn struct {
	slots int
	fill  string
	vals  []string
}

func (c *labelColumn) grow(rows int) { c.vals = appendFilled(c.vals, rows*c.slots, c.fill) }

type intListColumn struct {
	vals [][]int64
}

func (c *intListColumn) grow(rows int) { c.vals = append(c.vals, make([][]int64, rows)...) }

type realListColumn struct {
	vals [][]float64
}

func (c *realListColumn) grow(rows int) { c.vals = append(c.vals, make([][]float64, rows)...) }

// blankColumn keeps filler fields addressable without storing anything.
type blankColumn struct{}

func (blankColumn) grow(int) {}

func newColumn(f *carddef.FieldDef, rows int) column {
	col := emptyColumn(f)
	col.grow(rows)
	return col
}

func emptyColumn(f *carddef.FieldDef) column {
	if f.List {
		switch f.Kind {
		case carddef.KindInteger:
			return &intListColumn{}
		case carddef.KindReal:
			return &realListColumn{}
		}
		panic(fmt.Sprintf("deck: list field %q has kind %s", f.Name, f.Kind))
	}
	switch f.Kind {
	case carddef.KindInteger:
		return &intColumn{slots: f.Repeat, fill: f.DefInt}
	case carddef.KindReal:
		return &realColumn{slots: f.Repeat, fill: f.DefReal}
	case carddef.KindLabel:
		return &labelColumn{slots: f.Repeat, fill: f.DefLabel}
	case carddef.KindBlank:
		return blankColumn{}
	}
	panic(fmt.Sprintf("deck: field %q has kind %s", f.Name, f.Kind))
}

// Collection is the columnar store for every imported record of one card
// type. Row order is record order of appearance; row index is the position
// that cross-references resolve to.
type Collection struct {
	def    *carddef.CardDef
	rows   int
	cols   []column
	refs   map[string]*RefBinding
	checks map[string]carddef.CheckFunc
}

// New allocates a collection with rows rows, every scalar and vector slot
// prefilled with its field's declared default and every list tail empty. The
// checks map supplies the functions behind the check names the schema uses;
// derive it with Registry.ChecksFor.
func New(def *carddef.CardDef, rows int, checks map[string]carddef.CheckFunc) *Collection {
	c := &Collection{
		def:    def,
		rows:   rows,
		cols:   make([]column, len(def.Fields)),
		refs:   make(map[string]*RefBinding),
		checks: checks,
	}
	for i, f := range def.Fields {
		c.cols[i] = newColumn(f, rows)
	}
	return c
}

// Def returns the schema the collection was built from.
func (c *Collection) Def() *carddef.CardDef { return c.def }

// Type returns the card type name.
func (c *Collection) Type() string { return c.def.Type }

// Entity returns the entity class tag of the schema.
func (c *Collection) Entity() string { return c.def.Entity }

// Rows returns the number of stored records.
func (c *Collection) Rows() int { return c.rows }

// Extend appends n default-filled rows. A collection must not grow once
// reference bindings are attached; their positions would go stale.
func (c *Collection) Extend(n int) {
	if len(c.refs) > 0 {
		panic(fmt.Sprintf("deck: %s extended after reference binding", c.def.Type))
	}
	for _, col := range c.cols {
		col.grow(n)
	}
	c.rows += n
}

func (c *Collection) field(name string) (int, *carddef.FieldDef) {
	i, ok := c.def.FieldIndex(name)
	if !ok {
		panic(fmt.Sprintf("deck: %s has no field %q", c.def.Type, name))
	}
	return i, c.def.Fields[i]
}

func (c *Collection) intCol(name string) (*intColumn, *carddef.FieldDef) {
	i, f := c.field(name)
	col, ok := c.cols[i].(*intColumn)
	if !ok {
		panic(fmt.Sprintf("deck: field %s.%s is not integer storage", c.def.Type, name))
	}
	return col, f
}

func (c *Collection) realCol(name string) (*realColumn, *carddef.FieldDef) {
	i, f := c.field(name)
	col, ok := c.cols[i].(*realColumn)
	if !ok {
		panic(fmt.Sprintf("deck: field %s.%s is not real storage", c.def.Type, name))
	}
	return col, f
}

func (c *Collection) labelCol(name string) (*labelColumn, *carddef.FieldDef) {
	i, f := c.field(name)
	col, ok := c.cols[i].(*labelColumn)
	if !ok {
		panic(fmt.Sprintf("deck: field %s.%s is not label storage", c.def.Type, name))
	}
	return col, f
}

func (c *Collection) intListCol(name string) (*intListColumn, *carddef.FieldDef) {
	i, f := c.field(name)
	col, ok := c.cols[i].(*intListColumn)
	if !ok {
		panic(fmt.Sprintf("deck: field %s.%s is not an integer list", c.def.Type, name))
	}
	return col, f
}

func (c *Collection) realListCol(name string) (*realListColumn, *carddef.FieldDef) {
	i, f := c.field(name)
	col, ok := c.cols[i].(*realListColumn)
	if !ok {
		panic(fmt.Sprintf("deck: field %s.%s is not a real list", c.def.Type, name))
	}
	return col, f
}

func (c *Collection) rowIndex(row int) int {
	if row < 0 || row >= c.rows {
		panic(fmt.Sprintf("deck: row %d out of range for %s (%d rows)", row, c.def.Type, c.rows))
	}
	return row
}

func (c *Collection) slotIndex(f *carddef.FieldDef, row, slot int) int {
	if slot < 0 || slot >= f.Repeat {
		panic(fmt.Sprintf("deck: slot %d out of range for %s.%s (repeat %d)", slot, c.def.Type, f.Name, f.Repeat))
	}
	return c.rowIndex(row)*f.Repeat + slot
}

func (c *Collection) runCheck(f *carddef.FieldDef, row int, v any) error {
	if f.Check == "" {
		return nil
	}
	fn, ok := c.checks[f.Check]
	if !ok {
		panic(fmt.Sprintf("deck: check %q of %s.%s has no function", f.Check, c.def.Type, f.Name))
	}
	if err := fn(v); err != nil {
		return &ValidationError{Card: c.def.Type, Field: f.Name, Row: row, Value: v, Msg: err.Error()}
	}
	return nil
}

// SetInt stores one integer slot. A check failure rejects the value and
// leaves the slot untouched.
func (c *Collection) SetInt(row int, field string, slot int, v int64) error {
	col, f := c.intCol(field)
	if err := c.runCheck(f, row, v); err != nil {
		return err
	}
	col.vals[c.slotIndex(f, row, slot)] = v
	return nil
}

// SetReal stores one real slot.
func (c *Collection) SetReal(row int, field string, slot int, v float64) error {
	col, f := c.realCol(field)
	if err := c.runCheck(f, row, v); err != nil {
		return err
	}
	col.vals[c.slotIndex(f, row, slot)] = v
	return nil
}

// SetLabel stores one label slot, enforcing the schema's length cap.
func (c *Collection) SetLabel(row int, field string, slot int, v string) error {
	col, f := c.labelCol(field)
	if f.MaxChars > 0 && len(v) > f.MaxChars {
		return &ValidationError{
			Card: c.def.Type, Field: field, Row: row, Value: v,
			Msg: fmt.Sprintf("label exceeds %d characters", f.MaxChars),
		}
	}
	if err := c.runCheck(f, row, v); err != nil {
		return err
	}
	col.vals[c.slotIndex(f, row, slot)] = v
	return nil
}

// SetIntVec stores every slot of a vector field at once. The row is written
// only when all elements pass the field's check.
func (c *Collection) SetIntVec(row int, field string, vals []int64) error {
	col, f := c.intCol(field)
	if len(vals) != f.Repeat {
		panic(fmt.Sprintf("deck: %s.%s wants %d values, got %d", c.def.Type, field, f.Repeat, len(vals)))
	}
	for _, v := range vals {
		if err := c.runCheck(f, row, v); err != nil {
			return err
		}
	}
	copy(col.vals[c.slotIndex(f, row, 0):], vals)
	return nil
}

// SetRealVec stores every slot of a real vector field at once.
func (c *Collection) SetRealVec(row int, field string, vals []float64) error {
	col, f := c.realCol(field)
	if len(vals) != f.Repeat {
		panic(fmt.Sprintf("deck: %s.%s wants %d values, got %d", c.def.Type, field, f.Repeat, len(vals)))
	}
	for _, v := range vals {
		if err := c.runCheck(f, row, v); err != nil {
			return err
		}
	}
	copy(col.vals[c.slotIndex(f, row, 0):], vals)
	return nil
}

// SetIntList stores the ragged tail of one row. The slice is retained as-is.
func (c *Collection) SetIntList(row int, field string, vals []int64) error {
	col, f := c.intListCol(field)
	for _, v := range vals {
		if err := c.runCheck(f, row, v); err != nil {
			return err
		}
	}
	col.vals[c.rowIndex(row)] = vals
	return nil
}

// SetRealList stores the ragged real tail of one row.
func (c *Collection) SetRealList(row int, field string, vals []float64) error {
	col, f := c.realListCol(field)
	for _, v := range vals {
		if err := c.runCheck(f, row, v); err != nil {
			return err
		}
	}
	col.vals[c.rowIndex(row)] = vals
	return nil
}

// Int returns the first slot of an integer field.
func (c *Collection) Int(row int, field string) int64 {
	col, f := c.intCol(field)
	return col.vals[c.slotIndex(f, row, 0)]
}

// Real returns the first slot of a real field.
func (c *Collection) Real(row int, field string) float64 {
	col, f := c.realCol(field)
	return col.vals[c.slotIndex(f, row, 0)]
}

// Label returns the first slot of a label field.
func (c *Collection) Label(row int, field string) string {
	col, f := c.labelCol(field)
	return col.vals[c.slotIndex(f, row, 0)]
}

// IntVec returns a copy of all slots of one row of an integer vector field.
func (c *Collection) IntVec(row int, field string) []int64 {
	col, f := c.intCol(field)
	start := c.slotIndex(f, row, 0)
	out := make([]int64, f.Repeat)
	copy(out, col.vals[start:start+f.Repeat])
	return out
}

// RealVec returns a copy of all slots of one row of a real vector field.
func (c *Collection) RealVec(row int, field string) []float64 {
	col, f := c.realCol(field)
	start := c.slotIndex(f, row, 0)
	out := make([]float64, f.Repeat)
	copy(out, col.vals[start:start+f.Repeat])
	return out
}

// IntList returns the stored list tail of one row. The slice is shared with
// the collection and must not be modified.
func (c *Collection) IntList(row int, field string) []int64 {
	col, _ := c.intListCol(field)
	return col.vals[c.rowIndex(row)]
}

// RealList returns the stored real list tail of one row.
func (c *Collection) RealList(row int, field string) []float64 {
	col, _ := c.realListCol(field)
	return col.vals[c.rowIndex(row)]
}

// Ints returns a copy of the flattened integer column, rows*repeat values.
func (c *Collection) Ints(field string) []int64 {
	col, _ := c.intCol(field)
	out := make([]int64, len(col.vals))
	copy(out, col.vals)
	return out
}

// Reals returns a copy of the flattened real column.
func (c *Collection) Reals(field string) []float64 {
	col, _ := c.realCol(field)
	out := make([]float64, len(col.vals))
	copy(out, col.vals)
	return out
}

// Labels returns a copy of the flattened label column.
func (c *Collection) Labels(field string) []string {
	col, _ := c.labelCol(field)
	out := make([]string, len(col.vals))
	copy(out, col.vals)
	return out
}

// IntLists returns the per-row list tails. Row slices are shared with the
// collection and must not be modified.
func (c *Collection) IntLists(field string) [][]int64 {
	col, _ := c.intListCol(field)
	out := make([][]int64, len(col.vals))
	copy(out, col.vals)
	return out
}

// RealLists returns the per-row real list tails.
func (c *Collection) RealLists(field string) [][]float64 {
	col, _ := c.realListCol(field)
	out := make([][]float64, len(col.vals))
	copy(out, col.vals)
	return out
}

// IDs returns the identifier column in row order.
func (c *Collection) IDs() []int64 {
	return c.Ints(c.def.IDField().Name)
}

// IDIndex maps identifier values to row positions. A duplicate identifier
// yields a ValidationError naming both occurrences.
func (c *Collection) IDIndex() (map[int64]int, error) {
	idField := c.def.IDField().Name
	col, _ := c.intCol(idField)
	idx := make(map[int64]int, c.rows)
	for row := 0; row < c.rows; row++ {
		id := col.vals[row]
		if prev, dup := idx[id]; dup {
			return nil, &ValidationError{
				Card: c.def.Type, Field: idField, Row: row, Value: id,
				Msg: fmt.Sprintf("duplicate identifier (first at row %d)", prev),
			}
		}
		idx[id] = row
	}
	return idx, nil
}
