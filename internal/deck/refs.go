package deck

import "fmt"

// Unresolved marks a cross-reference position that index resolution could
// not bind: the referenced identifier is absent from the model, or the raw
// value is the no-reference sentinel 0.
const Unresolved = -1

// RefBinding is the resolved form of one cross-reference field: for every
// stored reference value, the row position of the referenced record inside
// the target collection. Scalar and vector fields use Pos, flattened the
// same way as their column; list-tail fields use ListPos.
type RefBinding struct {
	// TargetType is the card type the references were matched against,
	// after any entity class fallback.
	TargetType string
	Target     *Collection

	Pos     []int
	ListPos [][]int
}

// BindRef attaches the resolved positions for a cross-reference field.
func (c *Collection) BindRef(field string, b *RefBinding) error {
	_, f := c.field(field)
	if f.Ref == nil {
		return fmt.Errorf("field %s.%s declares no cross-reference", c.def.Type, field)
	}
	if _, dup := c.refs[field]; dup {
		return fmt.Errorf("field %s.%s bound twice", c.def.Type, field)
	}
	c.refs[field] = b
	return nil
}

// Ref returns the binding attached to a cross-reference field, or nil before
// resolution.
func (c *Collection) Ref(field string) *RefBinding {
	return c.refs[field]
}
