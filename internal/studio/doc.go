// Package studio holds the working state of one content session: the active
// preset, the persona and ideas derived from it, and the script grid for the
// chosen idea. Changing the preset or the idea invalidates everything derived
// from the previous one.
package studio
