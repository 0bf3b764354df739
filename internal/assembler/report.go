package assembler

// Report summarizes one import: the files that contributed records, per-type
// row counts, the unknown card types that were skipped, and the references
// index resolution could not bind.
type Report struct {
	// Files lists every file read, primary first, includes in merge order.
	Files []string `json:"files"`

	// Records is the number of logical records decoded into collections.
	Records int `json:"records"`

	// Cards maps each imported card type to its final row count.
	Cards map[string]int `json:"cards"`

	// Skipped counts the records of each card type the registry does not
	// know. Skipped records never reach a collection.
	Skipped map[string]int `json:"skipped,omitempty"`

	// Unresolved lists the reference fields with identifiers that matched
	// no target row.
	Unresolved []UnresolvedReference `json:"unresolved,omitempty"`
}

// UnresolvedReference names one cross-reference field together with the
// distinct identifiers that matched no row of its target, in encounter
// order. A zero identifier means "no reference" and is never reported.
type UnresolvedReference struct {
	Card   string  `json:"card"`
	Field  string  `json:"field"`
	Target string  `json:"target"`
	IDs    []int64 `json:"ids"`
}
