// Package deck holds the typed columnar model an import produces: one
// collection per card type, resolved cross-reference bindings between them,
// and the deck parameter table.
package deck
