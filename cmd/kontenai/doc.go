// Command kontenai is the command-line studio for brand presets and AI
// generated content.
//
// It manages named brand DNA presets (list, show, save, rename, duplicate,
// delete), derives a persona and content ideas from a preset, generates
// script variants for an idea in thread, carousel or video form, suggests
// solutions and values while filling in a brand, and answers audience
// questions in the brand's voice. Configuration lives in a TOML file; see
// `kontenai config init`.
package main
