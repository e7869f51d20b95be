package browse

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/debuglog"
)

type DetailStatus int

const (
	DetailIdle DetailStatus = iota
	DetailLoading
	DetailLoaded
	DetailFailed
)

func (s DetailStatus) String() string {
	switch s {
	case DetailIdle:
		return "idle"
	case DetailLoading:
		return "loading"
	case DetailLoaded:
		return "loaded"
	case DetailFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type DetailState struct {
	Status DetailStatus
	ID     string
	Record *catalog.DetailRecord
	Err    string
}

// DetailFetcher loads the full record for the open item. Responses for an
// id that is no longer current are discarded.
type DetailFetcher struct {
	catalog   catalog.Catalog
	parent    context.Context
	seq       uint64
	inflight  *Handle
	state     DetailState
	listeners []func(DetailState)
}

func NewDetailFetcher(c catalog.Catalog) *DetailFetcher {
	return &DetailFetcher{catalog: c, parent: context.Background()}
}

func (d *DetailFetcher) State() DetailState {
	return d.state
}

func (d *DetailFetcher) OnChange(fn func(DetailState)) {
	d.listeners = append(d.listeners, fn)
}

// Load starts fetching id and moves to Loading.
func (d *DetailFetcher) Load(id string) tea.Cmd {
	d.seq++
	d.cancelInflight()
	d.set(DetailState{Status: DetailLoading, ID: id})

	h := newHandle(d.parent)
	d.inflight = h
	seq := d.seq
	c := d.catalog
	debuglog.Debugf("detail: loading %s (request %s)", id, h.Short())

	return func() tea.Msg {
		rec, err := c.Detail(h.Context(), id)
		return detailResultMsg{seq: seq, handle: h, id: id, record: rec, err: err}
	}
}

// Reset drops the current record and ignores any pending response.
func (d *DetailFetcher) Reset() {
	d.seq++
	d.cancelInflight()
	if d.state.Status != DetailIdle {
		d.set(DetailState{Status: DetailIdle})
	}
}

func (d *DetailFetcher) Update(msg tea.Msg) (tea.Cmd, bool) {
	res, ok := msg.(detailResultMsg)
	if !ok {
		return nil, false
	}
	res.handle.Cancel()

	if res.seq != d.seq || res.id != d.state.ID || isCancelled(res.err) {
		debuglog.Debugf("detail: dropping stale response for %s", res.id)
		return nil, true
	}
	d.inflight = nil

	if res.err != nil {
		debuglog.Warnf("detail %s failed: %v", res.id, res.err)
		d.set(DetailState{Status: DetailFailed, ID: res.id, Err: failureReason(res.err)})
		return nil, true
	}
	d.set(DetailState{Status: DetailLoaded, ID: res.id, Record: res.record})
	return nil, true
}

func (d *DetailFetcher) cancelInflight() {
	if d.inflight != nil {
		d.inflight.Cancel()
		d.inflight = nil
	}
}

func (d *DetailFetcher) set(st DetailState) {
	d.state = st
	for _, fn := range d.listeners {
		fn(st)
	}
}
