package classifier

import "fmt"

// ClassificationError reports a failed or unusable classification.
// Reply is set when the model answered with something other than a known intent.
type ClassificationError struct {
	Query string
	Reply string
	Err   error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %v", e.Err)
	}
	return fmt.Sprintf("classification failed: unrecognized reply %q", e.Reply)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
