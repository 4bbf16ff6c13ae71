// Package brand defines the brand configuration ("brand DNA") that every other
// kontenai component consumes, together with the rules that decide whether a
// configuration is usable.
//
// The package owns three things:
//
//   - the DNA record and its tag universes (platforms, content styles and
//     content tones)
//   - Validate, the pass/fail predicate returning field-scoped errors
//   - Sanitize, which strips tags that fall outside the current universes so
//     records persisted by older releases can still be read
//
// Preset display names follow their own rule (NormalizeName) and compare
// case-insensitively through NameKey.
package brand
