package bulkio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/feakit/bulkgridgo/internal/carddef"
	"github.com/feakit/bulkgridgo/internal/ctxlog"
	"github.com/feakit/bulkgridgo/internal/deck"
)

// DecodeRecord writes one logical record into row of the collection,
// consuming tokens in the schema's field order. Blank or unparsable numeric
// tokens fall back to the field default; list tails are strict and reject
// tokens they cannot type. Tokens past the schema are ignored, missing
// trailing tokens read as blank.
func DecodeRecord(ctx context.Context, rec *Record, def *carddef.CardDef, coll *deck.Collection, row int) error {
	log := ctxlog.FromContext(ctx)
	pos := 0
	for _, f := range def.Fields {
		if f.List {
			return decodeList(rec, f, def.ListSentinel, coll, row, remaining(rec.Fields, pos))
		}
		var err error
		switch f.Kind {
		case carddef.KindBlank:
			// filler slots carry no storage
		case carddef.KindInteger:
			err = decodeInts(log, rec, f, coll, row, pos)
		case carddef.KindReal:
			err = decodeReals(log, rec, f, coll, row, pos)
		case carddef.KindLabel:
			err = decodeLabels(rec, f, coll, row, pos)
		}
		if err != nil {
			return err
		}
		pos += f.Repeat
	}
	for j := pos; j < len(rec.Fields); j++ {
		if rec.Fields[j] != "" {
			log.Debug("record carries surplus tokens past its schema",
				"file", rec.File, "line", rec.Line, "card", rec.Type, "surplus", len(rec.Fields)-pos)
			break
		}
	}
	return nil
}

func decodeInts(log *slog.Logger, rec *Record, f *carddef.FieldDef, coll *deck.Collection, row, pos int) error {
	if f.Repeat == 1 {
		v := intToken(log, rec, f, tokenAt(rec.Fields, pos))
		if err := coll.SetInt(row, f.Name, 0, v); err != nil {
			return recordErr(rec, err)
		}
		return nil
	}
	vals := make([]int64, f.Repeat)
	for i := range vals {
		vals[i] = intToken(log, rec, f, tokenAt(rec.Fields, pos+i))
	}
	if err := coll.SetIntVec(row, f.Name, vals); err != nil {
		return recordErr(rec, err)
	}
	return nil
}

func decodeReals(log *slog.Logger, rec *Record, f *carddef.FieldDef, coll *deck.Collection, row, pos int) error {
	if f.Repeat == 1 {
		v := realToken(log, rec, f, tokenAt(rec.Fields, pos))
		if err := coll.SetReal(row, f.Name, 0, v); err != nil {
			return recordErr(rec, err)
		}
		return nil
	}
	vals := make([]float64, f.Repeat)
	for i := range vals {
		vals[i] = realToken(log, rec, f, tokenAt(rec.Fields, pos+i))
	}
	if err := coll.SetRealVec(row, f.Name, vals); err != nil {
		return recordErr(rec, err)
	}
	return nil
}

func decodeLabels(rec *Record, f *carddef.FieldDef, coll *deck.Collection, row, pos int) error {
	for i := 0; i < f.Repeat; i++ {
		v := tokenAt(rec.Fields, pos+i)
		if v == "" {
			v = f.DefLabel
		}
		if err := coll.SetLabel(row, f.Name, i, v); err != nil {
			return recordErr(rec, err)
		}
	}
	return nil
}

// decodeList types the remaining tokens of a record into its list tail.
// Blank tokens are column padding and skipped; the terminator sentinel stops
// the list; THRU between two integers expands to the inclusive range.
func decodeList(rec *Record, f *carddef.FieldDef, sentinel string, coll *deck.Collection, row int, toks []string) error {
	isInt := f.Kind == carddef.KindInteger
	var ints []int64
	var reals []float64

	i := 0
	for i < len(toks) {
		tok := toks[i]
		if tok == "" {
			i++
			continue
		}
		if sentinel != "" && strings.EqualFold(tok, sentinel) {
			for j := i + 1; j < len(toks); j++ {
				if toks[j] != "" {
					return listErr(rec, f, toks[j], "data after list terminator")
				}
			}
			break
		}
		if strings.EqualFold(tok, "THRU") {
			if !isInt {
				return listErr(rec, f, tok, "range expansion inside a real-valued list")
			}
			if len(ints) == 0 {
				return listErr(rec, f, tok, "range expansion without a lower bound")
			}
			j := i + 1
			for j < len(toks) && toks[j] == "" {
				j++
			}
			if j >= len(toks) {
				return listErr(rec, f, tok, "range expansion without an upper bound")
			}
			hi, ok := parseInt(toks[j])
			if !ok {
				return listErr(rec, f, toks[j], "range bound is not an integer")
			}
			lo := ints[len(ints)-1]
			if hi < lo {
				return listErr(rec, f, toks[j], fmt.Sprintf("descending range %d THRU %d", lo, hi))
			}
			for v := lo + 1; v <= hi; v++ {
				ints = append(ints, v)
			}
			i = j + 1
			continue
		}
		if isInt {
			v, ok := parseInt(tok)
			if !ok {
				return listErr(rec, f, tok, "unrecognized token in list")
			}
			ints = append(ints, v)
		} else {
			v, ok := parseReal(tok)
			if !ok {
				return listErr(rec, f, tok, "unrecognized token in list")
			}
			reals = append(reals, v)
		}
		i++
	}

	if isInt {
		if err := coll.SetIntList(row, f.Name, ints); err != nil {
			return recordErr(rec, err)
		}
		return nil
	}
	if err := coll.SetRealList(row, f.Name, reals); err != nil {
		return recordErr(rec, err)
	}
	return nil
}

func listErr(rec *Record, f *carddef.FieldDef, tok, msg string) error {
	return &DecodeError{File: rec.File, Line: rec.Line, Card: rec.Type, Field: f.Name, Token: tok, Msg: msg}
}

func intToken(log *slog.Logger, rec *Record, f *carddef.FieldDef, tok string) int64 {
	v, ok := parseInt(tok)
	if ok {
		return v
	}
	if tok != "" {
		log.Debug("unparsable integer token replaced by default",
			"file", rec.File, "line", rec.Line, "card", rec.Type, "field", f.Name, "token", tok)
	}
	return f.DefInt
}

func realToken(log *slog.Logger, rec *Record, f *carddef.FieldDef, tok string) float64 {
	v, ok := parseReal(tok)
	if ok {
		return v
	}
	if tok != "" {
		log.Debug("unparsable real token replaced by default",
			"file", rec.File, "line", rec.Line, "card", rec.Type, "field", f.Name, "token", tok)
	}
	return f.DefReal
}

func tokenAt(toks []string, i int) string {
	if i >= 0 && i < len(toks) {
		return toks[i]
	}
	return ""
}

func remaining(toks []string, pos int) []string {
	if pos >= len(toks) {
		return nil
	}
	return toks[pos:]
}

func recordErr(rec *Record, err error) error {
	return fmt.Errorf("%s:%d: %w", rec.File, rec.Line, err)
}
