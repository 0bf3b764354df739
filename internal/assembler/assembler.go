package assembler

import (
	"context"
	"fmt"

	"github.com/feakit/bulkgridgo/internal/bulkio"
	"github.com/feakit/bulkgridgo/internal/carddef"
	"github.com/feakit/bulkgridgo/internal/ctxlog"
	"github.com/feakit/bulkgridgo/internal/deck"
)

// Options tunes one import.
type Options struct {
	// MaxIncludeDepth caps INCLUDE nesting. Zero means
	// bulkio.DefaultMaxIncludeDepth.
	MaxIncludeDepth int

	// Strict makes an unknown card type abort the import instead of landing
	// in the skip report.
	Strict bool
}

// ImportFile reads a bulk data file, decodes every record the registry
// knows into a model, and runs index resolution. The registry is frozen for
// the duration; the model is the caller's to keep and treat as read-only.
func ImportFile(ctx context.Context, reg *carddef.Registry, path string, opts Options) (*deck.Model, *Report, error) {
	reg.Freeze()
	split, err := bulkio.Split(ctx, path, bulkio.SplitOptions{MaxIncludeDepth: opts.MaxIncludeDepth})
	if err != nil {
		return nil, nil, err
	}
	return assemble(ctx, reg, split, opts)
}

// ImportBytes is ImportFile over in-memory content. INCLUDE directives still
// read from the file system, resolved against filename's directory.
func ImportBytes(ctx context.Context, reg *carddef.Registry, filename string, src []byte, opts Options) (*deck.Model, *Report, error) {
	reg.Freeze()
	split, err := bulkio.SplitBytes(ctx, filename, src, bulkio.SplitOptions{MaxIncludeDepth: opts.MaxIncludeDepth})
	if err != nil {
		return nil, nil, err
	}
	return assemble(ctx, reg, split, opts)
}

func assemble(ctx context.Context, reg *carddef.Registry, split *bulkio.SplitResult, opts Options) (*deck.Model, *Report, error) {
	imp := &importer{
		reg:    reg,
		strict: opts.Strict,
		model:  deck.NewModel(),
		report: &Report{
			Files:   split.Files,
			Skipped: make(map[string]int),
		},
		sites: make(map[string]map[int64]site),
	}

	log := ctxlog.FromContext(ctx)

	if err := imp.run(ctx, split.Records); err != nil {
		return nil, nil, err
	}
	for _, p := range split.Params {
		if prev, dup := imp.model.Params.Raw(p.Name); dup {
			log.Debug("parameter overwritten", "name", p.Name, "old", prev, "new", p.Value)
		}
		imp.model.Params.Set(p.Name, p.Value)
	}

	unresolved, err := Resolve(ctx, imp.model, reg)
	if err != nil {
		return nil, nil, err
	}
	imp.report.Unresolved = unresolved

	imp.report.Cards = make(map[string]int, len(imp.model.Names()))
	for _, name := range imp.model.Names() {
		coll, _ := imp.model.Get(name)
		imp.report.Cards[name] = coll.Rows()
	}

	log.Info("deck assembled",
		"files", len(imp.report.Files),
		"records", imp.report.Records,
		"card_types", len(imp.report.Cards),
		"skipped_types", len(imp.report.Skipped),
		"unresolved_refs", len(imp.report.Unresolved))
	return imp.model, imp.report, nil
}

// site is where a record was first defined, for duplicate identifier errors.
type site struct {
	file string
	line int
}

type importer struct {
	reg    *carddef.Registry
	strict bool
	model  *deck.Model
	report *Report
	sites  map[string]map[int64]site
}

// run walks the record stream one source segment at a time. A segment is a
// maximal run of records from the same physical file; the splitter emits
// each file's records contiguously, so segment boundaries are file
// boundaries and every included file extends the collections the earlier
// files created.
func (imp *importer) run(ctx context.Context, recs []*bulkio.Record) error {
	for start := 0; start < len(recs); {
		end := start + 1
		for end < len(recs) && recs[end].File == recs[start].File {
			end++
		}
		if err := imp.segment(ctx, recs[start:end]); err != nil {
			return err
		}
		start = end
	}
	return nil
}

// segment decodes one file's records in two passes: count rows per card
// type so each collection block is allocated once, then decode into the
// block in file order. Row order therefore equals encounter order.
func (imp *importer) segment(ctx context.Context, recs []*bulkio.Record) error {
	log := ctxlog.FromContext(ctx)

	counts := make(map[string]int)
	var order []string
	for _, rec := range recs {
		if !imp.reg.Has(rec.Type) {
			if imp.strict {
				return &bulkio.DecodeError{
					File: rec.File,
					Line: rec.Line,
					Card: rec.Type,
					Msg:  "unknown card type",
				}
			}
			if imp.report.Skipped[rec.Type] == 0 {
				log.Warn("skipping unknown card type",
					"card", rec.Type, "file", rec.File, "line", rec.Line)
			}
			imp.report.Skipped[rec.Type]++
			continue
		}
		if counts[rec.Type] == 0 {
			order = append(order, rec.Type)
		}
		counts[rec.Type]++
	}

	colls := make(map[string]*deck.Collection, len(order))
	next := make(map[string]int, len(order))
	for _, cardType := range order {
		def, err := imp.reg.Lookup(cardType)
		if err != nil {
			return err
		}
		coll, start := imp.model.CreateOrExtend(def, counts[cardType], imp.reg.ChecksFor(def))
		colls[cardType] = coll
		next[cardType] = start
	}

	for _, rec := range recs {
		coll, ok := colls[rec.Type]
		if !ok {
			continue
		}
		row := next[rec.Type]
		next[rec.Type]++
		if err := bulkio.DecodeRecord(ctx, rec, coll.Def(), coll, row); err != nil {
			return err
		}
		if err := imp.noteID(rec, coll, row); err != nil {
			return err
		}
		imp.report.Records++
	}
	return nil
}

// noteID records where each identifier was defined and rejects the second
// definition. Identifiers must be unique per card type across every
// contributing file.
func (imp *importer) noteID(rec *bulkio.Record, coll *deck.Collection, row int) error {
	idField := coll.Def().IDField().Name
	id := coll.Int(row, idField)

	sites := imp.sites[rec.Type]
	if sites == nil {
		sites = make(map[int64]site)
		imp.sites[rec.Type] = sites
	}
	if first, dup := sites[id]; dup {
		return fmt.Errorf("%s:%d: %w", rec.File, rec.Line, &deck.ValidationError{
			Card:  rec.Type,
			Field: idField,
			Row:   row,
			Value: id,
			Msg:   fmt.Sprintf("duplicate identifier (first defined at %s:%d)", first.file, first.line),
		})
	}
	sites[id] = site{file: rec.File, line: rec.Line}
	return nil
}
