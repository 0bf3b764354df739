// Package carddef is the schema registry for bulk-data cards. Card schemas
// are declared in HCL manifests (the builtin library is embedded; more can
// be loaded from a directory) and translated into CardDef values that drive
// decoding, storage layout and cross-reference resolution. Manifests may
// name check functions; the Go implementations are registered on the
// Registry, and registration fails when a manifest names a check that has no
// function, keeping manifests and code in parity.
package carddef
