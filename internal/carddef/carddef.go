package carddef

import "fmt"

// Kind is the storage type of a card field.
type Kind int

const (
	// KindInteger fields store one int64 per slot.
	KindInteger Kind = iota
	// KindReal fields store one float64 per slot.
	KindReal
	// KindLabel fields store a short text token per slot.
	KindLabel
	// KindBlank fields occupy a column position but store nothing.
	KindBlank
)

// String returns the manifest spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindLabel:
		return "label"
	case KindBlank:
		return "blank"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a manifest kind string to its Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "integer":
		return KindInteger, true
	case "real":
		return KindReal, true
	case "label":
		return KindLabel, true
	case "blank":
		return KindBlank, true
	}
	return 0, false
}

// RefDef declares a cross-reference from an integer field to another card
// type or entity class. Targets are soft at registration time; they are
// resolved against the populated model after import.
type RefDef struct {
	// Target is a card type name (exact match) or an entity class tag
	// (matched when no card type of that name exists in the model).
	Target string
	// HandleName is the name under which the resolved binding is exported.
	HandleName string
}

// FieldDef describes one field of a card schema.
type FieldDef struct {
	Name   string
	Kind   Kind
	Repeat int  // consecutive column slots; 1 for scalars
	List   bool // list-tail: consumes every remaining token of the record

	DefInt   int64
	DefReal  float64
	DefLabel string

	Ref      *RefDef
	Check    string // name of a registered check function, "" when unchecked
	MaxChars int    // label length cap, 0 for no cap
}

// Slots returns how many column slots the field consumes on decode. List
// fields consume the remainder of the record and report 0 here.
func (f *FieldDef) Slots() int {
	if f.List {
		return 0
	}
	return f.Repeat
}

// CardDef is one schema variant: a named, ordered field set. The first field
// is always the record identifier. An entity class (Entity) may expose
// several variants; each populated collection holds exactly one.
type CardDef struct {
	Type         string // card type name, e.g. "CBAR"
	Entity       string // entity class tag, e.g. "beam"
	Description  string
	ListSentinel string // token terminating a list-tail, "" disables

	Fields []*FieldDef

	byName map[string]int
}

// Field returns the named field definition, or nil.
func (d *CardDef) Field(name string) *FieldDef {
	i, ok := d.byName[name]
	if !ok {
		return nil
	}
	return d.Fields[i]
}

// FieldIndex returns the schema position of the named field.
func (d *CardDef) FieldIndex(name string) (int, bool) {
	i, ok := d.byName[name]
	return i, ok
}

// ListField returns the trailing list field of the variant, or nil when the
// schema has none.
func (d *CardDef) ListField() *FieldDef {
	if len(d.Fields) == 0 {
		return nil
	}
	last := d.Fields[len(d.Fields)-1]
	if last.List {
		return last
	}
	return nil
}

// IDField returns the identifier field (always the first of the schema).
func (d *CardDef) IDField() *FieldDef { return d.Fields[0] }

func (d *CardDef) index() {
	d.byName = make(map[string]int, len(d.Fields))
	for i, f := range d.Fields {
		d.byName[f.Name] = i
	}
}
