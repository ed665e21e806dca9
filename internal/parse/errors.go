package parse

import "fmt"

// InputError reports a missing or malformed export file. It is fatal to a run.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputErr(path string, format string, args ...any) *InputError {
	return &InputError{Path: path, Err: fmt.Errorf(format, args...)}
}
