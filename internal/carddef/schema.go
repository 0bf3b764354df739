package carddef

import "github.com/hashicorp/hcl/v2"

// Manifest is the top-level structure of one card-manifest file. A manifest
// declares any number of card schemas.
type Manifest struct {
	Cards []*CardBlock `hcl:"card,block"`
}

// CardBlock represents a `card` block from a manifest file.
type CardBlock struct {
	Type         string        `hcl:"type,label"`
	Entity       string        `hcl:"entity"`
	Description  string        `hcl:"description,optional"`
	ListSentinel string        `hcl:"list_sentinel,optional"`
	Fields       []*FieldBlock `hcl:"field,block"`
}

// FieldBlock represents a `field` block within a card. The default value is
// kept as an expression so the translator can evaluate and convert it to the
// field's declared kind.
type FieldBlock struct {
	Name     string         `hcl:"name,label"`
	Kind     string         `hcl:"kind"`
	Default  hcl.Expression `hcl:"default,optional"`
	Repeat   int            `hcl:"repeat,optional"`
	List     bool           `hcl:"list,optional"`
	Ref      string         `hcl:"ref,optional"`
	RefName  string         `hcl:"ref_name,optional"`
	Check    string         `hcl:"check,optional"`
	MaxChars int            `hcl:"max_chars,optional"`
}
