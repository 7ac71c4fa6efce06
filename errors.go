package poly

import "errors"

// Sentinel errors reported while building tables and handles.
//
// The dispatch path itself never returns errors: a handle that was
// constructed successfully can always call every method its interface
// declares. Everything that can go wrong is caught at construction
// time and wrapped around one of these sentinels, so callers can use
// errors.Is to distinguish the failure classes.
var (
	// ErrMissingImplementation indicates a concrete type has no
	// registered implementation for a required signature.
	ErrMissingImplementation = errors.New("poly: missing implementation")

	// ErrSignatureNotFound indicates a handle view demands a signature
	// that the source handle's interface does not declare.
	ErrSignatureNotFound = errors.New("poly: signature not found")

	// ErrCapacityExceeded indicates an interface declares more
	// signatures than a table can index.
	ErrCapacityExceeded = errors.New("poly: table capacity exceeded")

	// ErrDuplicateSignature indicates the same method appears twice in
	// one interface declaration.
	ErrDuplicateSignature = errors.New("poly: duplicate signature")

	// ErrConstViolation indicates an attempt to obtain mutable access
	// through read-only storage, or to build a shared owner over an
	// interface with non-const signatures.
	ErrConstViolation = errors.New("poly: const violation")
)
