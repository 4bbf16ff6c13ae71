// Package preflight provides readiness checks for the directories, the preset
// store and the generation provider kontenai depends on.
//
// The CLI "kontenai doctor" command runs RunAll and prints one line per
// check. Checks never modify state: the store check only reads.
package preflight
