package browse

import (
	"context"
	"errors"

	"github.com/pders01/popcorn/internal/catalog"
)

// Messages produced by the commands in this package. They are unexported:
// callers hand every message to Session.Update and act on the handled flag.

type searchFireMsg struct {
	seq uint64
}

type searchResultMsg struct {
	seq    uint64
	handle *Handle
	query  string
	items  []catalog.SearchResultItem
	err    error
}

type detailResultMsg struct {
	seq    uint64
	handle *Handle
	id     string
	record *catalog.DetailRecord
	err    error
}

// Failure reasons shown to the user.
const (
	ReasonAPIError = "api error"
	ReasonNotFound = "movie not found"
)

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// failureReason maps a catalog error onto the fixed user-facing strings.
func failureReason(err error) string {
	if errors.Is(err, catalog.ErrNotFound) {
		return ReasonNotFound
	}
	return ReasonAPIError
}
