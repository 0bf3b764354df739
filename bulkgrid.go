// Package bulkgridgo imports Nastran bulk data decks into typed, columnar
// collections with resolved cross-references.
//
// The usual flow is three calls: NewRegistry for the builtin card library,
// optionally LoadCards for project-specific manifests, then Import or
// ImportBytes for each deck. The returned Model holds one Collection per
// card type; the Report summarizes what was read, skipped, and left
// unresolved.
package bulkgridgo

import (
	"context"

	"github.com/feakit/bulkgridgo/internal/assembler"
	"github.com/feakit/bulkgridgo/internal/carddef"
	"github.com/feakit/bulkgridgo/internal/deck"
)

// Core model types, re-exported for callers of the module root.
type (
	// Model is the assembled deck: one Collection per imported card type
	// plus the PARAM table.
	Model = deck.Model
	// Collection is the columnar store for every record of one card type.
	Collection = deck.Collection
	// RefBinding is a resolved cross-reference column.
	RefBinding = deck.RefBinding
	// Params is the deck-wide parameter table.
	Params = deck.Params

	// Registry holds card schemas and named check functions.
	Registry = carddef.Registry
	// CardDef is one card schema.
	CardDef = carddef.CardDef
	// FieldDef is one field of a card schema.
	FieldDef = carddef.FieldDef

	// Options tunes an import run.
	Options = assembler.Options
	// Report summarizes one import run.
	Report = assembler.Report
	// UnresolvedReference names identifiers that matched no record.
	UnresolvedReference = assembler.UnresolvedReference
)

// Unresolved marks a cross-reference position that resolution could not
// bind to a row.
const Unresolved = deck.Unresolved

// NewRegistry returns a card registry preloaded with the builtin library.
func NewRegistry() (*Registry, error) {
	reg := carddef.New()
	if err := carddef.LoadBuiltin(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadCards registers every card manifest found under dir, recursively,
// extending the registry's library.
func LoadCards(reg *Registry, dir string) error {
	return carddef.LoadDir(reg, dir)
}

// LoadCardBytes registers the card manifests contained in src.
func LoadCardBytes(reg *Registry, filename string, src []byte) error {
	return carddef.LoadBytes(reg, filename, src)
}

// Import reads the deck at path, follows its includes, decodes every record
// against the registry, and resolves cross-references. The registry is
// frozen for the duration of the import and stays frozen.
func Import(ctx context.Context, reg *Registry, path string, opts Options) (*Model, *Report, error) {
	return assembler.ImportFile(ctx, reg, path, opts)
}

// ImportBytes imports an in-memory deck. Include directives resolve
// relative to the directory part of name.
func ImportBytes(ctx context.Context, reg *Registry, name string, src []byte, opts Options) (*Model, *Report, error) {
	return assembler.ImportBytes(ctx, reg, name, src, opts)
}
