// Package bulkio turns raw bulk-data text into typed collection rows. The
// splitter partitions physical lines into logical records, handling control
// sections, comments, global parameters, nested file inclusion, and both
// implicit and tag-matched continuation chains in fixed and free-field
// encodings. The decoder types each record's tokens against its card schema,
// repairing the format's bare-exponent numeric shorthand on the way.
package bulkio
