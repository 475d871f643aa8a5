package shape

import (
	"errors"
	"fmt"

	"github.com/nao1215/scanreport/internal/payload"
)

// ErrHealthEntry is returned when a health map entry is not a mapping with
// exactly one state key.
var ErrHealthEntry = errors.New("health map entry must have exactly one state")

func errSingleKey(n int) error {
	return fmt.Errorf("%w: %w (found %d keys)", payload.ErrMalformed, ErrHealthEntry, n)
}
