package diffcore

import "fmt"

// DiffCompatError is returned when an unsupported line-differ compat
// version is requested.
type DiffCompatError struct {
	Version int
}

func (e *DiffCompatError) Error() string {
	return fmt.Sprintf("diffcore: invalid diff compatibility version %d", e.Version)
}

// EncodingError is returned when no encoding in the fallback list could
// convert a buffer to UTF-8. Because the final replacement-decode fallback
// never actually fails, this is reachable only in principle; it is kept so
// callers have a typed error to check for.
type EncodingError struct {
	Attempted []string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("diffcore: could not convert content to UTF-8 using encodings: %v", e.Attempted)
}
