// Package assembler turns a bulk data file into a populated, cross-linked
// model. It drives the splitter, allocates one columnar collection per card
// type (counting before decoding so each source's block is laid out once),
// decodes records in encounter order, merges the contributions of included
// files, and finishes with index resolution, which rewrites raw identifier
// references as row positions into their target collections.
package assembler
