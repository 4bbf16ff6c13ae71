// Package generation defines the contract between kontenai and the language
// model that writes its content, plus the LLM-backed implementation.
//
// Service is the narrow surface the rest of the tool depends on:
// DerivePersona, DeriveIdeas and DeriveScript. Assistant extends it with the
// brand-form helpers (solution and values suggestions) and the answer engine.
//
// Scripts come back as a ScriptBody, a tagged variant that is either an
// ordered list of segments (thread posts, carousel slides) or a single block
// (video script). Callers display it through Render without caring which
// shape they hold.
//
// Every failure is returned as *Error, which matches ErrGeneration under
// errors.Is.
package generation
