package browse

import (
	"context"

	"github.com/google/uuid"
)

// Handle owns one in-flight catalog request. Cancel is safe to call more
// than once and after the request finished.
type Handle struct {
	ID     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
}

func newHandle(parent context.Context) *Handle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Handle{ID: uuid.New(), ctx: ctx, cancel: cancel}
}

func (h *Handle) Context() context.Context {
	return h.ctx
}

func (h *Handle) Cancel() {
	if h != nil {
		h.cancel()
	}
}

// Short returns the first block of the id for log lines.
func (h *Handle) Short() string {
	return h.ID.String()[:8]
}
