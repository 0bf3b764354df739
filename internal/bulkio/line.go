package bulkio

import "strings"

// Physical layout of a fixed-format bulk line: an 8-character lead field,
// data slots up to column 72, and a trailing continuation-tag field in
// columns 73-80. Characters past column 80 are ignored.
const (
	leadWidth  = 8
	dataEnd    = 72
	lineWidth  = 80
	smallWidth = 8
	largeWidth = 16
)

// physLine is one tokenized bulk-data line. Data slots are trimmed; blank
// slots stay in place as empty strings so token position tracks column
// position.
type physLine struct {
	file   string
	num    int
	cont   bool   // continuation line: joins the preceding logical record
	lead   string // trimmed lead field; card name for heads, marker for continuations
	fields []string
	tag    string // trimmed trailing match-tag, "" when absent
}

// tokenizeFixed splits a fixed-format line. The width marker `*` on the lead
// field switches the data slots from 8 to 16 characters for this line only.
func tokenizeFixed(file string, num int, raw string) *physLine {
	if len(raw) > lineWidth {
		raw = raw[:lineWidth]
	}
	l := &physLine{file: file, num: num}
	l.cont = len(raw) == 0 || raw[0] == ' ' || raw[0] == '+' || raw[0] == '*'

	lead := raw
	if len(lead) > leadWidth {
		lead = lead[:leadWidth]
	}
	l.lead = strings.TrimSpace(lead)

	width := smallWidth
	if strings.HasPrefix(l.lead, "*") || strings.HasSuffix(l.lead, "*") {
		width = largeWidth
	}

	if len(raw) > leadWidth {
		data := raw[leadWidth:]
		if len(data) > dataEnd-leadWidth {
			data = data[:dataEnd-leadWidth]
		}
		for i := 0; i < len(data); i += width {
			end := i + width
			if end > len(data) {
				end = len(data)
			}
			l.fields = append(l.fields, strings.TrimSpace(data[i:end]))
		}
	}
	if len(raw) > dataEnd {
		l.tag = strings.TrimSpace(raw[dataEnd:])
	}
	return l
}

// tokenizeFree splits a comma-delimited line. The trailing token doubles as
// a continuation tag when it starts with a plus sign.
func tokenizeFree(file string, num int, raw string) *physLine {
	parts := strings.Split(raw, ",")
	toks := make([]string, len(parts))
	for i, p := range parts {
		toks[i] = strings.TrimSpace(p)
	}

	l := &physLine{file: file, num: num, lead: toks[0]}
	l.cont = l.lead == "" || l.lead[0] == '+' || l.lead[0] == '*'

	rest := toks[1:]
	if len(rest) > 0 {
		if last := rest[len(rest)-1]; strings.HasPrefix(last, "+") {
			l.tag = last
			rest = rest[:len(rest)-1]
		}
	}
	l.fields = rest
	return l
}

// cardName normalizes a head line's lead field to the schema type name: the
// first whitespace-delimited token, width marker stripped, upper-cased.
func cardName(lead string) string {
	name := lead
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, "*")
	return strings.ToUpper(name)
}

// contKey normalizes a continuation tag or lead for matching. The first
// character of either side is a `+` or `*` marker, not part of the
// identifier, so a small-field tag still matches a large-field continuation.
func contKey(s string) string {
	if s == "" {
		return ""
	}
	if s[0] == '+' || s[0] == '*' {
		return strings.TrimSpace(s[1:])
	}
	return s
}
