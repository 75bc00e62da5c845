package corpus

import (
	"errors"
	"fmt"
)

// ErrEmptyCorpus is returned by Build when there are no documents to index
var ErrEmptyCorpus = errors.New("corpus is empty: no documents to index")

// CollisionError reports two distinct sources that normalize to the same identifier
type CollisionError struct {
	ID     string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("identifier collision: %q and %q both normalize to %q", e.First, e.Second, e.ID)
}
