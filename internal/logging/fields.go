package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType tags a log line with a stable, greppable event name.
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator-facing next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldPresetID identifies the preset a line refers to.
	FieldPresetID = "preset_id"
	// FieldSlotID is the 0-based script variant position.
	FieldSlotID = "slot_id"
	// FieldFormat is the script format tag.
	FieldFormat = "format"
	// FieldEpoch is the script cache generation counter.
	FieldEpoch = "epoch"
)
