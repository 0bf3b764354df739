package assembler

import (
	"context"
	"fmt"
	"strings"

	"github.com/feakit/bulkgridgo/internal/carddef"
	"github.com/feakit/bulkgridgo/internal/ctxlog"
	"github.com/feakit/bulkgridgo/internal/deck"
)

// AmbiguousReferenceError reports a cross-reference whose declared target is
// satisfied by more than one collection in the model, so the relationship
// cannot be well-defined. It is always fatal.
type AmbiguousReferenceError struct {
	Card       string
	Field      string
	Target     string
	Candidates []string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("%s: field %q: reference target %q is ambiguous: matched by %s",
		e.Card, e.Field, e.Target, strings.Join(e.Candidates, ", "))
}

// Resolve binds every schema-declared cross-reference in the model: for each
// reference field it locates the target collection, maps the stored
// identifiers to row positions in that target, and attaches the result with
// Collection.BindRef. It must run only after every collection is fully
// populated.
//
// A reference field whose target collection is missing, or whose identifiers
// include values absent from the target, stays importable: the affected
// positions are deck.Unresolved and the field is returned in the
// UnresolvedReference list. An ambiguous target is an error.
func Resolve(ctx context.Context, model *deck.Model, reg *carddef.Registry) ([]UnresolvedReference, error) {
	log := ctxlog.FromContext(ctx)

	var unresolved []UnresolvedReference
	indexes := make(map[string]map[int64]int)

	for _, name := range model.Names() {
		coll, _ := model.Get(name)
		for _, f := range coll.Def().Fields {
			if f.Ref == nil {
				continue
			}
			target, err := findTarget(model, reg, coll.Type(), f)
			if err != nil {
				return nil, err
			}
			missing, err := bindField(coll, f, target, indexes)
			if err != nil {
				return nil, err
			}
			if len(missing) > 0 {
				ref := UnresolvedReference{
					Card:   coll.Type(),
					Field:  f.Name,
					Target: f.Ref.Target,
					IDs:    missing,
				}
				unresolved = append(unresolved, ref)
				log.Warn("unresolved reference",
					"card", ref.Card,
					"field", ref.Field,
					"target", ref.Target,
					"missing_ids", len(ref.IDs))
			}
		}
	}
	return unresolved, nil
}

// findTarget locates the collection a reference field points at. An exact
// card type match wins; otherwise the target's entity class (or the target
// string itself, when it names no registered card) selects candidates. No
// candidate returns nil, several return AmbiguousReferenceError.
func findTarget(model *deck.Model, reg *carddef.Registry, card string, f *carddef.FieldDef) (*deck.Collection, error) {
	name := f.Ref.Target
	if c, ok := model.Get(name); ok {
		return c, nil
	}

	entity := name
	if def, err := reg.Lookup(name); err == nil {
		entity = def.Entity
	}
	cands := model.ByEntity(entity)
	switch len(cands) {
	case 0:
		return nil, nil
	case 1:
		return cands[0], nil
	default:
		types := make([]string, len(cands))
		for i, c := range cands {
			types[i] = c.Type()
		}
		return nil, &AmbiguousReferenceError{
			Card:       card,
			Field:      f.Name,
			Target:     name,
			Candidates: types,
		}
	}
}

// bindField computes the position array for one reference field and attaches
// it. The returned slice holds the distinct identifiers that matched no
// target row; with a nil target every nonzero identifier is in it.
func bindField(coll *deck.Collection, f *carddef.FieldDef, target *deck.Collection, indexes map[string]map[int64]int) ([]int64, error) {
	var index map[int64]int
	b := &deck.RefBinding{TargetType: f.Ref.Target, Target: target}
	if target != nil {
		b.TargetType = target.Type()
		var err error
		index, err = targetIndex(target, indexes)
		if err != nil {
			return nil, fmt.Errorf("indexing %s for %s.%s: %w", target.Type(), coll.Type(), f.Name, err)
		}
	}

	var missing []int64
	seen := make(map[int64]bool)
	position := func(id int64) int {
		if id == 0 {
			return deck.Unresolved
		}
		if pos, ok := index[id]; ok {
			return pos
		}
		if !seen[id] {
			seen[id] = true
			missing = append(missing, id)
		}
		return deck.Unresolved
	}

	if f.List {
		lists := coll.IntLists(f.Name)
		b.ListPos = make([][]int, len(lists))
		for row, ids := range lists {
			pos := make([]int, len(ids))
			for i, id := range ids {
				pos[i] = position(id)
			}
			b.ListPos[row] = pos
		}
	} else {
		ids := coll.Ints(f.Name)
		b.Pos = make([]int, len(ids))
		for i, id := range ids {
			b.Pos[i] = position(id)
		}
	}

	if err := coll.BindRef(f.Name, b); err != nil {
		return nil, err
	}
	return missing, nil
}

func targetIndex(target *deck.Collection, cache map[string]map[int64]int) (map[int64]int, error) {
	if idx, ok := cache[target.Type()]; ok {
		return idx, nil
	}
	idx, err := target.IDIndex()
	if err != nil {
		return nil, err
	}
	cache[target.Type()] = idx
	return idx, nil
}
