// Package export renders a finished model as JSON for downstream tooling.
// Output order is deterministic: collections in model order, fields in
// schema order, parameters in encounter order.
package export

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/feakit/bulkgridgo/internal/assembler"
	"github.com/feakit/bulkgridgo/internal/carddef"
	"github.com/feakit/bulkgridgo/internal/deck"
)

type modelDump struct {
	Params []paramDump       `json:"params,omitempty"`
	Cards  []cardDump        `json:"cards"`
	Report *assembler.Report `json:"report,omitempty"`
}

type paramDump struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type cardDump struct {
	Type   string      `json:"type"`
	Entity string      `json:"entity"`
	Rows   int         `json:"rows"`
	Fields []fieldDump `json:"fields"`
}

type fieldDump struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Repeat int      `json:"repeat,omitempty"`
	List   bool     `json:"list,omitempty"`
	Values any      `json:"values"`
	Ref    *refDump `json:"ref,omitempty"`
}

type refDump struct {
	Target string `json:"target"`
	Pos    any    `json:"pos"`
}

// MarshalModel renders the model, and the report when non-nil, as indented
// JSON.
func MarshalModel(model *deck.Model, report *assembler.Report) ([]byte, error) {
	dump := modelDump{
		Cards:  make([]cardDump, 0, len(model.Names())),
		Report: report,
	}
	for _, name := range model.Params.Names() {
		value, _ := model.Params.Raw(name)
		dump.Params = append(dump.Params, paramDump{Name: name, Value: value})
	}
	for _, coll := range model.Collections() {
		dump.Cards = append(dump.Cards, dumpCollection(coll))
	}
	return json.MarshalIndent(dump, "", "  ")
}

// WriteFile writes the MarshalModel rendering of the model to path.
func WriteFile(path string, model *deck.Model, report *assembler.Report) error {
	data, err := MarshalModel(model, report)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing model export: %w", err)
	}
	return nil
}

func dumpCollection(coll *deck.Collection) cardDump {
	def := coll.Def()
	card := cardDump{
		Type:   def.Type,
		Entity: def.Entity,
		Rows:   coll.Rows(),
	}
	for _, f := range def.Fields {
		if f.Kind == carddef.KindBlank {
			continue
		}
		fd := fieldDump{
			Name:   f.Name,
			Kind:   f.Kind.String(),
			List:   f.List,
			Values: fieldValues(coll, f),
		}
		if f.Repeat > 1 {
			fd.Repeat = f.Repeat
		}
		if b := coll.Ref(f.Name); b != nil {
			pos := any(b.Pos)
			if f.List {
				pos = b.ListPos
			}
			fd.Ref = &refDump{Target: b.TargetType, Pos: pos}
		}
		card.Fields = append(card.Fields, fd)
	}
	return card
}

func fieldValues(coll *deck.Collection, f *carddef.FieldDef) any {
	switch {
	case f.List && f.Kind == carddef.KindInteger:
		return coll.IntLists(f.Name)
	case f.List:
		return coll.RealLists(f.Name)
	case f.Kind == carddef.KindInteger && f.Repeat > 1:
		return chunkRows(coll.Ints(f.Name), f.Repeat)
	case f.Kind == carddef.KindInteger:
		return coll.Ints(f.Name)
	case f.Kind == carddef.KindReal && f.Repeat > 1:
		return chunkRows(coll.Reals(f.Name), f.Repeat)
	case f.Kind == carddef.KindReal:
		return coll.Reals(f.Name)
	case f.Repeat > 1:
		return chunkRows(coll.Labels(f.Name), f.Repeat)
	default:
		return coll.Labels(f.Name)
	}
}

// chunkRows reshapes a flattened masked column into one slice per row.
func chunkRows[T any](flat []T, width int) [][]T {
	out := make([][]T, 0, len(flat)/width)
	for i := 0; i+width <= len(flat); i += width {
		out = append(out, flat[i:i+width])
	}
	return out
}
