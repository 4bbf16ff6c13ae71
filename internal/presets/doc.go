// Package presets persists named brand configurations.
//
// A Store owns the authoritative collection and hands out copies. Names are
// unique case-insensitively: Add upserts onto an existing name and reports
// whether it did, Duplicate probes "Name (Copy)", "Name (Copy 2)", ... until
// a free name is found.
//
// Every mutation rewrites the whole collection through a Persistence
// backend (File, SQLite or Memory). The blob is a versioned JSON envelope;
// Load runs the migration chain, strips tags that fell out of the current
// enum universes and sets aside records that still fail validation in a
// quarantine list that is carried forward on later writes instead of being
// erased.
//
// Storage failures never reach callers as errors: the store logs once,
// switches to memory-only operation for the rest of the session and reports
// the condition through Degraded and StorageErr.
package presets
