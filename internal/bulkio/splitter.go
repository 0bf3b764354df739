package bulkio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/feakit/bulkgridgo/internal/ctxlog"
)

// DefaultMaxIncludeDepth bounds nested file inclusion.
const DefaultMaxIncludeDepth = 16

// Record is one logical card: the head line's type name plus the data tokens
// of every physical line in its continuation chain, in chain order.
type Record struct {
	File   string
	Line   int
	Type   string
	Fields []string
}

// Param is one global parameter statement, in encounter order.
type Param struct {
	Name  string
	Value string
}

// SplitResult is the output of splitting one deck and its includes.
type SplitResult struct {
	Records []*Record
	Params  []Param
	Files   []string
}

// SplitOptions tunes the splitter.
type SplitOptions struct {
	// MaxIncludeDepth bounds include nesting; 0 selects
	// DefaultMaxIncludeDepth.
	MaxIncludeDepth int
}

// Split reads a bulk deck from disk, recursively follows its include
// directives, and returns the logical records of every contributing file.
// An included file's records follow all records of the including file,
// depth-first, so the merge order is primary rows first, then each include
// in directive order.
func Split(ctx context.Context, path string, opts SplitOptions) (*SplitResult, error) {
	s := newSplitter(opts)
	if err := s.file(ctx, path); err != nil {
		return nil, err
	}
	return s.result(), nil
}

// SplitBytes splits in-memory deck content. Relative include paths resolve
// against filename's directory.
func SplitBytes(ctx context.Context, filename string, src []byte, opts SplitOptions) (*SplitResult, error) {
	s := newSplitter(opts)
	s.stack = append(s.stack, stackKey(filename))
	if err := s.bytes(ctx, filename, src); err != nil {
		return nil, err
	}
	return s.result(), nil
}

type splitter struct {
	maxDepth int
	stack    []string
	records  []*Record
	params   []Param
	files    []string
}

func newSplitter(opts SplitOptions) *splitter {
	depth := opts.MaxIncludeDepth
	if depth <= 0 {
		depth = DefaultMaxIncludeDepth
	}
	return &splitter{maxDepth: depth}
}

func (s *splitter) result() *SplitResult {
	return &SplitResult{Records: s.records, Params: s.params, Files: s.files}
}

func stackKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// file processes one deck file. The include stack turns an inclusion cycle
// into a DecodeError and bounds recursion depth; each file is read whole and
// closed before any nested include is opened.
func (s *splitter) file(ctx context.Context, path string) error {
	key := stackKey(path)
	for _, anc := range s.stack {
		if anc == key {
			chain := append(append([]string{}, s.stack...), key)
			return &DecodeError{File: path, Msg: "inclusion cycle: " + strings.Join(chain, " -> ")}
		}
	}
	if len(s.stack) >= s.maxDepth {
		return &DecodeError{File: path, Msg: fmt.Sprintf("include depth exceeds %d", s.maxDepth)}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading deck file: %w", err)
	}
	s.stack = append(s.stack, key)
	defer func() { s.stack = s.stack[:len(s.stack)-1] }()
	return s.bytes(ctx, path, src)
}

type includeDirective struct {
	path string
	line int
}

func (s *splitter) bytes(ctx context.Context, path string, src []byte) error {
	log := ctxlog.FromContext(ctx)
	s.files = append(s.files, path)

	rawLines := strings.Split(string(src), "\n")
	stripped := make([]string, len(rawLines))
	for i, ln := range rawLines {
		ln = strings.TrimSuffix(ln, "\r")
		if len(ln) > lineWidth {
			log.Debug("truncating long line", "file", path, "line", i+1, "width", len(ln))
			ln = ln[:lineWidth]
		}
		stripped[i] = stripComment(ln)
	}

	start, end := bulkRange(stripped)
	log.Debug("deck sections located",
		"file", path, "bulk_from", start+1, "bulk_to", end, "lines", len(rawLines))

	var includes []includeDirective
	var phys []*physLine
	for i := start; i < end; i++ {
		line := stripped[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		num := i + 1
		if isIncludeLine(line) {
			incPath, err := includePath(line)
			if err != nil {
				return &DecodeError{File: path, Line: num, Msg: err.Error()}
			}
			includes = append(includes, includeDirective{path: incPath, line: num})
			continue
		}
		var pl *physLine
		if strings.ContainsRune(line, ',') {
			pl = tokenizeFree(path, num, line)
		} else {
			pl = tokenizeFixed(path, num, line)
		}
		if !pl.cont && cardName(pl.lead) == "PARAM" {
			p, err := parseParam(line)
			if err != nil {
				return &DecodeError{File: path, Line: num, Msg: err.Error()}
			}
			s.params = append(s.params, p)
			continue
		}
		phys = append(phys, pl)
	}

	recs, err := groupRecords(phys)
	if err != nil {
		return err
	}
	s.records = append(s.records, recs...)
	log.Debug("bulk lines grouped",
		"file", path, "records", len(recs), "includes", len(includes))

	for _, inc := range includes {
		target := inc.path
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		log.Debug("including file", "from", path, "line", inc.line, "file", target)
		if err := s.file(ctx, target); err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				return err
			}
			return &DecodeError{File: path, Line: inc.line, Msg: fmt.Sprintf("include %q: %v", inc.path, err)}
		}
	}
	return nil
}

// stripComment removes a `$` comment to end of line.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '$'); i >= 0 {
		return line[:i]
	}
	return line
}

// bulkRange finds the bulk-data stream: after the BEGIN BULK sentinel when
// present (after CEND when only control sections precede the data), ending
// at ENDDATA. A file with no sentinels is all bulk data.
func bulkRange(stripped []string) (int, int) {
	begin, cend := -1, -1
	for i, ln := range stripped {
		switch normalizeSentinel(ln) {
		case "BEGIN BULK":
			if begin < 0 {
				begin = i
			}
		case "CEND":
			if cend < 0 {
				cend = i
			}
		}
	}
	start := 0
	switch {
	case begin >= 0:
		start = begin + 1
	case cend >= 0:
		start = cend + 1
	}
	end := len(stripped)
	for i := start; i < len(stripped); i++ {
		if normalizeSentinel(stripped[i]) == "ENDDATA" {
			end = i
			break
		}
	}
	return start, end
}

func normalizeSentinel(line string) string {
	return strings.ToUpper(strings.Join(strings.Fields(line), " "))
}

// isIncludeLine reports whether the line is a file-inclusion directive. The
// keyword is case-insensitive and must stand alone as the first token.
func isIncludeLine(line string) bool {
	t := strings.TrimSpace(line)
	if len(t) < len("INCLUDE") {
		return false
	}
	if !strings.EqualFold(t[:len("INCLUDE")], "INCLUDE") {
		return false
	}
	rest := t[len("INCLUDE"):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', ',', '\'', '"':
		return true
	}
	return false
}

// includePath extracts the named file, accepting single, double, or no
// quoting.
func includePath(line string) (string, error) {
	t := strings.TrimSpace(line)
	rest := strings.TrimSpace(t[len("INCLUDE"):])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
	if n := len(rest); n > 0 && (rest[0] == '\'' || rest[0] == '"') {
		if n < 2 || rest[n-1] != rest[0] {
			return "", fmt.Errorf("include path quote is not terminated")
		}
		rest = strings.TrimSpace(rest[1 : n-1])
	}
	if rest == "" {
		return "", fmt.Errorf("include directive names no file")
	}
	return rest, nil
}

// parseParam splits a PARAM statement: keyword then a name/value pair,
// comma- or space-delimited.
func parseParam(line string) (Param, error) {
	t := strings.TrimSpace(line)
	var toks []string
	if strings.ContainsRune(t, ',') {
		for _, p := range strings.Split(t, ",") {
			toks = append(toks, strings.TrimSpace(p))
		}
	} else {
		toks = strings.Fields(t)
	}
	for len(toks) > 0 && toks[len(toks)-1] == "" {
		toks = toks[:len(toks)-1]
	}
	if len(toks) != 3 {
		return Param{}, fmt.Errorf("parameter statement wants a name and a value, got %d tokens", len(toks)-1)
	}
	return Param{Name: strings.ToUpper(toks[1]), Value: toks[2]}, nil
}

// groupRecords assembles logical records from the tokenized lines of one
// file. Explicit match-tags search the whole file; implicit continuations
// attach in file order. Every continuation line must end up owned by exactly
// one record.
func groupRecords(lines []*physLine) ([]*Record, error) {
	consumed := make([]bool, len(lines))
	leadIdx := make(map[string][]int)
	wanted := make(map[string]bool)
	for i, l := range lines {
		if l.cont {
			if key := contKey(l.lead); key != "" {
				leadIdx[key] = append(leadIdx[key], i)
			}
		}
		if l.tag != "" {
			wanted[contKey(l.tag)] = true
		}
	}

	var recs []*Record
	for i, l := range lines {
		if l.cont {
			continue
		}
		rec := &Record{File: l.file, Line: l.num, Type: cardName(l.lead)}
		rec.Fields = append(rec.Fields, l.fields...)
		if err := chainContinuations(rec, lines, consumed, leadIdx, wanted, i); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	for i, l := range lines {
		if l.cont && !consumed[i] {
			return nil, &DecodeError{File: l.file, Line: l.num, Msg: "continuation line belongs to no record"}
		}
	}
	return recs, nil
}

// chainContinuations walks one record's continuation chain from its head
// line, appending each claimed line's tokens. A line carrying a match-tag
// hands the chain to the unique line whose lead matches, wherever it sits in
// the file; a line without one claims following lines in file order, unless
// their lead is spoken for by some other record's tag.
func chainContinuations(rec *Record, lines []*physLine, consumed []bool, leadIdx map[string][]int, wanted map[string]bool, head int) error {
	cur := head
	for {
		if tag := lines[cur].tag; tag != "" {
			key := contKey(tag)
			var cands []int
			for _, j := range leadIdx[key] {
				if !consumed[j] {
					cands = append(cands, j)
				}
			}
			switch {
			case len(cands) == 0:
				return &DecodeError{
					File: lines[cur].file, Line: lines[cur].num, Card: rec.Type, Token: tag,
					Msg: "continuation tag matches no line",
				}
			case len(cands) > 1:
				return &DecodeError{
					File: lines[cur].file, Line: lines[cur].num, Card: rec.Type, Token: tag,
					Msg: fmt.Sprintf("continuation tag is ambiguous: lines %d and %d both match",
						lines[cands[0]].num, lines[cands[1]].num),
				}
			}
			j := cands[0]
			consumed[j] = true
			rec.Fields = append(rec.Fields, lines[j].fields...)
			cur = j
			continue
		}

		j := cur + 1
		for j < len(lines) && consumed[j] {
			j++
		}
		if j >= len(lines) || !lines[j].cont {
			return nil
		}
		if key := contKey(lines[j].lead); key != "" && wanted[key] {
			return nil
		}
		consumed[j] = true
		rec.Fields = append(rec.Fields, lines[j].fields...)
		cur = j
	}
}
