package migrate

import "fmt"

// DeserializationError reports input that could not be decoded or did not
// have the expected tagged-value shape.
type DeserializationError struct {
	Reason string // What was wrong with the input
	Err    error  // Underlying decoder error, nil for shape violations
}

func (e *DeserializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to deserialize: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to deserialize: %s", e.Reason)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *DeserializationError) Unwrap() error { return e.Err }

// SerializationError reports a value that could not be encoded, including
// domain saves on paths registered without a reverse transform.
type SerializationError struct {
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to serialize: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to serialize: %s", e.Reason)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SerializationError) Unwrap() error { return e.Err }

// EntityNotFoundError reports an operation against an entity name with no
// registered migration path.
type EntityNotFoundError struct {
	Entity string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %q not found", e.Entity)
}

// PathNotDefinedError reports a payload tagged with a version that does
// not appear in the entity's registered version list.
type PathNotDefinedError struct {
	Entity  string
	Version string
}

func (e *PathNotDefinedError) Error() string {
	return fmt.Sprintf("no migration path defined for entity %q version %q", e.Entity, e.Version)
}

// StepError reports a failed migration step or finalize transform. For
// finalize failures To is "domain".
type StepError struct {
	From string
	To   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration failed from %q to %q: %v", e.From, e.To, e.Err)
}

// Unwrap returns the transform's own error for errors.Is/As.
func (e *StepError) Unwrap() error { return e.Err }

// CycleError reports a version list that revisits a version. Path holds
// the joined version sequence for the error message.
type CycleError struct {
	Entity string
	Path   string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular migration path detected in entity %q: %s", e.Entity, e.Path)
}

// VersionOrderError reports adjacent versions that are not strictly
// increasing under semver comparison, or a version that does not parse as
// semver at all (in which case From and To name the offending value).
type VersionOrderError struct {
	Entity string
	From   string
	To     string
}

func (e *VersionOrderError) Error() string {
	return fmt.Sprintf("invalid version order in entity %q: %q -> %q (versions must increase according to semver)",
		e.Entity, e.From, e.To)
}

// BuildError reports an invalid builder call sequence, detected at the
// terminal Into/IntoWithSave call.
type BuildError struct {
	Entity string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("invalid migration path for entity %q: %s", e.Entity, e.Reason)
}
