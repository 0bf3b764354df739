package carddef

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// defaultListSentinel terminates list-tail token streams unless a card
// overrides it.
const defaultListSentinel = "ENDT"

// translateCard converts a decoded manifest block into a CardDef, evaluating
// default-value expressions down to the field's Go kind.
func translateCard(block *CardBlock) (*CardDef, error) {
	def := &CardDef{
		Type:         block.Type,
		Entity:       block.Entity,
		Description:  block.Description,
		ListSentinel: block.ListSentinel,
	}
	if def.ListSentinel == "" {
		def.ListSentinel = defaultListSentinel
	}
	for _, fb := range block.Fields {
		fd, err := translateField(block.Type, fb)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, fd)
	}
	return def, nil
}

func translateField(cardType string, fb *FieldBlock) (*FieldDef, error) {
	kind, ok := ParseKind(fb.Kind)
	if !ok {
		return nil, &SchemaError{Card: cardType, Field: fb.Name, Msg: fmt.Sprintf("unknown kind %q", fb.Kind)}
	}
	fd := &FieldDef{
		Name:     fb.Name,
		Kind:     kind,
		Repeat:   fb.Repeat,
		List:     fb.List,
		Check:    fb.Check,
		MaxChars: fb.MaxChars,
	}
	if fd.Repeat == 0 {
		fd.Repeat = 1
	}
	if fb.Ref != "" {
		handle := fb.RefName
		if handle == "" {
			handle = fb.Name + "_ref"
		}
		fd.Ref = &RefDef{Target: fb.Ref, HandleName: handle}
	}
	if err := applyDefault(cardType, fb, fd); err != nil {
		return nil, err
	}
	return fd, nil
}

// applyDefault evaluates the manifest default expression, if any, and
// converts it to the field kind. Manifests hold literals only, so the
// expression evaluates against a nil context.
func applyDefault(cardType string, fb *FieldBlock, fd *FieldDef) error {
	if fb.Default == nil {
		return nil
	}
	val, diags := fb.Default.Value(nil)
	if diags.HasErrors() {
		return &SchemaError{Card: cardType, Field: fb.Name, Msg: fmt.Sprintf("default does not evaluate: %s", diags.Error())}
	}
	if val.IsNull() {
		return nil
	}
	switch fd.Kind {
	case KindInteger:
		n, err := ctyInt(val)
		if err != nil {
			return &SchemaError{Card: cardType, Field: fb.Name, Msg: err.Error()}
		}
		fd.DefInt = n
	case KindReal:
		f, err := ctyReal(val)
		if err != nil {
			return &SchemaError{Card: cardType, Field: fb.Name, Msg: err.Error()}
		}
		fd.DefReal = f
	case KindLabel:
		s, err := ctyLabel(val)
		if err != nil {
			return &SchemaError{Card: cardType, Field: fb.Name, Msg: err.Error()}
		}
		fd.DefLabel = s
	case KindBlank:
		return &SchemaError{Card: cardType, Field: fb.Name, Msg: "blank filler cannot take a default"}
	}
	return nil
}

func ctyInt(val cty.Value) (int64, error) {
	conv, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("default is not a number: %w", err)
	}
	var n int64
	if err := gocty.FromCtyValue(conv, &n); err != nil {
		return 0, fmt.Errorf("default is not an integer: %w", err)
	}
	return n, nil
}

func ctyReal(val cty.Value) (float64, error) {
	conv, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("default is not a number: %w", err)
	}
	var f float64
	if err := gocty.FromCtyValue(conv, &f); err != nil {
		return 0, fmt.Errorf("default is not a real: %w", err)
	}
	return f, nil
}

func ctyLabel(val cty.Value) (string, error) {
	conv, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("default is not text: %w", err)
	}
	var s string
	if err := gocty.FromCtyValue(conv, &s); err != nil {
		return "", fmt.Errorf("default is not text: %w", err)
	}
	return s, nil
}
