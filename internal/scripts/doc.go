// Package scripts keeps the per-idea grid of generated scripts.
//
// A Cache holds one slot per requested variant. Each slot caches the script
// bodies it has produced per format, so switching back to a format never
// calls the generator again. Slots succeed or fail independently, and every
// call is tagged with the cache epoch: Reset advances the epoch and results
// that arrive afterwards are dropped.
package scripts
