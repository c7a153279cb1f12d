package dataset

import "errors"

// Error kinds surfaced by the loader and splitter
var (
	// ErrInputAccess covers every failure to open, read, or decode clean.json
	// and noisy.json. The underlying cause stays wrapped.
	ErrInputAccess     = errors.New("error opening files")
	ErrInvalidKey      = errors.New("key is not an integer")
	ErrKeyMismatch     = errors.New("key missing from paired mapping")
	ErrInvalidTestSize = errors.New("test size must be in [0, 1)")
	ErrEmptyTrainSplit = errors.New("resulting train set is empty")
)
