package carddef

import (
	"fmt"
	"regexp"
	"sort"
	"sync/atomic"
)

// SchemaError reports an invalid schema registration. It is a programming or
// configuration error and is always fatal.
type SchemaError struct {
	Card  string
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Card != "" && e.Field != "":
		return fmt.Sprintf("schema %s: field %q: %s", e.Card, e.Field, e.Msg)
	case e.Card != "":
		return fmt.Sprintf("schema %s: %s", e.Card, e.Msg)
	default:
		return "schema: " + e.Msg
	}
}

// UnknownVariantError reports a lookup of a card type that was never
// registered.
type UnknownVariantError struct {
	Type string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown card type %q", e.Type)
}

// CheckFunc validates one field value before it is committed to a
// collection. The value is int64, float64, or string depending on the field
// kind. A nil return commits the value.
type CheckFunc func(value any) error

var fieldNameRE = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry holds every known card schema plus the named check functions the
// manifests may reference. It is populated at startup and frozen before the
// first import; registration after Freeze fails.
type Registry struct {
	defs   map[string]*CardDef
	order  []string
	checks map[string]CheckFunc
	frozen atomic.Bool
}

// New returns a registry preloaded with the builtin check functions.
func New() *Registry {
	return &Registry{
		defs:   make(map[string]*CardDef),
		checks: builtinChecks(),
	}
}

// RegisterCheck makes a named check available to manifests. Registering over
// an existing name or after Freeze fails with SchemaError.
func (r *Registry) RegisterCheck(name string, fn CheckFunc) error {
	if r.frozen.Load() {
		return &SchemaError{Msg: fmt.Sprintf("registry frozen; cannot register check %q", name)}
	}
	if name == "" || fn == nil {
		return &SchemaError{Msg: "check needs a name and a function"}
	}
	if _, dup := r.checks[name]; dup {
		return &SchemaError{Msg: fmt.Sprintf("check %q registered twice", name)}
	}
	r.checks[name] = fn
	return nil
}

// Check resolves a named check function.
func (r *Registry) Check(name string) (CheckFunc, bool) {
	fn, ok := r.checks[name]
	return fn, ok
}

// Register adds a card schema. The definition is validated structurally;
// cross-reference targets stay soft until index resolution.
func (r *Registry) Register(def *CardDef) error {
	if r.frozen.Load() {
		return &SchemaError{Card: def.Type, Msg: "registry frozen; cannot register during an import"}
	}
	if def.Type == "" {
		return &SchemaError{Msg: "card type name is empty"}
	}
	if _, dup := r.defs[def.Type]; dup {
		return &SchemaError{Card: def.Type, Msg: "variant registered twice"}
	}
	if def.Entity == "" {
		return &SchemaError{Card: def.Type, Msg: "entity class is empty"}
	}
	if len(def.Fields) == 0 {
		return &SchemaError{Card: def.Type, Msg: "schema has no fields"}
	}
	if err := r.validateFields(def); err != nil {
		return err
	}
	def.index()
	r.defs[def.Type] = def
	r.order = append(r.order, def.Type)
	return nil
}

func (r *Registry) validateFields(def *CardDef) error {
	seen := make(map[string]bool, len(def.Fields))
	for i, f := range def.Fields {
		if !fieldNameRE.MatchString(f.Name) {
			return &SchemaError{Card: def.Type, Field: f.Name, Msg: "not a valid identifier"}
		}
		if seen[f.Name] {
			return &SchemaError{Card: def.Type, Field: f.Name, Msg: "declared twice"}
		}
		seen[f.Name] = true
		if f.Repeat < 1 {
			return &SchemaError{Card: def.Type, Field: f.Name, Msg: "repeat mask must cover at least one slot"}
		}
		if f.List {
			if i != len(def.Fields)-1 {
				return &SchemaError{Card: def.Type, Field: f.Name, Msg: "list-tail must be the final field"}
			}
			if f.Repeat != 1 {
				return &SchemaError{Card: def.Type, Field: f.Name, Msg: "list-tail cannot carry a repeat mask"}
			}
			if f.Kind != KindInteger && f.Kind != KindReal {
				return &SchemaError{Card: def.Type, Field: f.Name, Msg: "list-tail must be integer or real"}
			}
		}
		if f.Kind == KindBlank && (f.Ref != nil || f.Check != "" || f.List) {
			return &SchemaError{Card: def.Type, Field: f.Name, Msg: "blank filler cannot reference, check, or list"}
		}
		if f.Ref != nil && f.Kind != KindInteger {
			return &SchemaError{Card: def.Type, Field: f.Name, Msg: "cross-reference requires an integer field"}
		}
		if f.MaxChars != 0 && f.Kind != KindLabel {
			return &SchemaError{Card: def.Type, Field: f.Name, Msg: "max_chars applies to label fields only"}
		}
		if f.MaxChars > 0 && len(f.DefLabel) > f.MaxChars {
			return &SchemaError{Card: def.Type, Field: f.Name, Msg: "default label exceeds max_chars"}
		}
		if f.Check != "" {
			if _, ok := r.checks[f.Check]; !ok {
				return &SchemaError{Card: def.Type, Field: f.Name, Msg: fmt.Sprintf("check %q has no registered function", f.Check)}
			}
		}
	}
	id := def.Fields[0]
	if id.Kind != KindInteger || id.Repeat != 1 || id.List {
		return &SchemaError{Card: def.Type, Field: id.Name, Msg: "identifier field must be a scalar integer"}
	}
	return nil
}

// ChecksFor collects the check functions a schema names, keyed by check
// name. Register guarantees every named check resolves.
func (r *Registry) ChecksFor(def *CardDef) map[string]CheckFunc {
	var out map[string]CheckFunc
	for _, f := range def.Fields {
		if f.Check == "" {
			continue
		}
		if out == nil {
			out = make(map[string]CheckFunc)
		}
		out[f.Check] = r.checks[f.Check]
	}
	return out
}

// Lookup returns the schema for a card type name.
func (r *Registry) Lookup(cardType string) (*CardDef, error) {
	def, ok := r.defs[cardType]
	if !ok {
		return nil, &UnknownVariantError{Type: cardType}
	}
	return def, nil
}

// Has reports whether the card type is registered.
func (r *Registry) Has(cardType string) bool {
	_, ok := r.defs[cardType]
	return ok
}

// Types returns every registered card type in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entities returns the distinct entity class tags, sorted.
func (r *Registry) Entities() []string {
	set := map[string]bool{}
	for _, t := range r.order {
		set[r.defs[t].Entity] = true
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Freeze forbids further registration. The assembler freezes the registry
// when an import starts so schemas cannot mutate mid-run; concurrent imports
// may share one frozen registry.
func (r *Registry) Freeze() { r.frozen.Store(true) }

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool { return r.frozen.Load() }
