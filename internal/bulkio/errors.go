package bulkio

import (
	"fmt"
	"strings"
)

// DecodeError reports malformed bulk-data input: a bad token, a broken
// continuation chain, an unusable list entry, or a file-inclusion problem.
// It is fatal for the import; a partially decoded record would corrupt index
// resolution downstream.
type DecodeError struct {
	File  string
	Line  int
	Card  string
	Field string
	Token string
	Msg   string
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s:%d: ", e.File, e.Line)
	}
	if e.Card != "" {
		b.WriteString(e.Card)
		b.WriteString(": ")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "field %q: ", e.Field)
	}
	if e.Token != "" {
		fmt.Fprintf(&b, "token %q: ", e.Token)
	}
	b.WriteString(e.Msg)
	return b.String()
}
