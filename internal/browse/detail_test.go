package browse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/popcorn/internal/catalog"
)

func TestDetail_LoadAndApply(t *testing.T) {
	d := NewDetailFetcher(&fakeCatalog{})

	var seen []DetailStatus
	d.OnChange(func(st DetailState) { seen = append(seen, st.Status) })

	cmd := d.Load("tt1375666")
	assert.Equal(t, DetailLoading, d.State().Status)
	assert.Equal(t, "tt1375666", d.State().ID)

	_, handled := d.Update(cmd())
	require.True(t, handled)

	st := d.State()
	assert.Equal(t, DetailLoaded, st.Status)
	require.NotNil(t, st.Record)
	assert.Equal(t, "tt1375666", st.Record.ID)
	assert.Equal(t, []DetailStatus{DetailLoading, DetailLoaded}, seen)
}

func TestDetail_StaleResponseDiscarded(t *testing.T) {
	d := NewDetailFetcher(&fakeCatalog{})

	first := d.Load("tt1")
	second := d.Load("tt2")

	_, handled := d.Update(first())
	assert.True(t, handled)
	assert.Equal(t, DetailLoading, d.State().Status, "response for tt1 must not land on tt2")

	_, _ = d.Update(second())
	assert.Equal(t, DetailLoaded, d.State().Status)
	assert.Equal(t, "tt2", d.State().Record.ID)
}

func TestDetail_ResponseAfterResetDiscarded(t *testing.T) {
	d := NewDetailFetcher(&fakeCatalog{})

	cmd := d.Load("tt1")
	ctx := d.inflight.Context()
	d.Reset()
	assert.Error(t, ctx.Err())

	_, handled := d.Update(cmd())
	assert.True(t, handled)
	assert.Equal(t, DetailIdle, d.State().Status)
}

func TestDetail_ReloadSameIDDiscardsOlder(t *testing.T) {
	d := NewDetailFetcher(&fakeCatalog{})

	older := d.Load("tt1")
	d.Reset()
	newer := d.Load("tt1")

	_, _ = d.Update(older())
	assert.Equal(t, DetailLoading, d.State().Status)
	_, _ = d.Update(newer())
	assert.Equal(t, DetailLoaded, d.State().Status)
}

func TestDetail_Failure(t *testing.T) {
	fc := &fakeCatalog{detail: func(context.Context, string) (*catalog.DetailRecord, error) {
		return nil, catalog.ErrTransport
	}}
	d := NewDetailFetcher(fc)

	_, _ = d.Update(d.Load("tt1")())
	assert.Equal(t, DetailFailed, d.State().Status)
	assert.Equal(t, "api error", d.State().Err)
}

func TestDetail_ResetFromIdleIsQuiet(t *testing.T) {
	d := NewDetailFetcher(&fakeCatalog{})

	var calls int
	d.OnChange(func(DetailState) { calls++ })
	d.Reset()
	assert.Zero(t, calls)
}

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection()

	var transitions []string
	s.OnChange(func(active string) { transitions = append(transitions, active) })

	s.Select("tt1")
	assert.Equal(t, "tt1", s.Active())
	s.Select("tt1")
	assert.Empty(t, s.Active())
	assert.False(t, s.IsOpen())

	s.Select("tt1")
	s.Select("tt2")
	assert.Equal(t, "tt2", s.Active())

	s.Close()
	s.Close()
	assert.Equal(t, []string{"tt1", "", "tt1", "tt2", ""}, transitions)
}
