package err

import "strings"

// ErrorsBucket collects independent failures, for example one per invalid
// column descriptor, so they can be reported together.
type ErrorsBucket struct {
	Msg    string
	Errors []error
}

func (e *ErrorsBucket) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Msg)
	for _, err := range e.Errors {
		sb.WriteString("\n\t")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *ErrorsBucket) Unwrap() []error {
	return e.Errors
}

// Add records err when it is non-nil.
func (e *ErrorsBucket) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// ErrOrNil returns the bucket when it holds at least one error.
func (e *ErrorsBucket) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
