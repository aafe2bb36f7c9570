package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/layer"
)

func TestGroup_PollOnce(t *testing.T) {
	a, b := layer.NewSettable(), layer.NewSettable()
	g := NewGroup(
		NewPoller("a", &scripted{results: []result{{bag: format.Bag{"a": "1"}}}}, a),
	)
	g.Add(NewPoller("b", &scripted{results: []result{{bag: format.Bag{"b": "2"}}}}, b))
	require.Equal(t, 2, g.Len())

	require.NoError(t, g.PollOnce(context.Background()))
	assert.Equal(t, map[string]any{"a": "1"}, a.Snapshot())
	assert.Equal(t, map[string]any{"b": "2"}, b.Snapshot())
}

func TestGroup_PollOnceError(t *testing.T) {
	errDown := errors.New("down")
	g := NewGroup(
		NewPoller("ok", &scripted{results: []result{{bag: format.Bag{}}}}, layer.NewSettable()),
		NewPoller("bad", &scripted{results: []result{{err: errDown}}}, layer.NewSettable()),
	)
	assert.ErrorIs(t, g.PollOnce(context.Background()), errDown)
}

func TestGroup_RunStopsOnCancel(t *testing.T) {
	target := layer.NewSettable()
	fetcher := &scripted{results: []result{{bag: format.Bag{"k": "v"}}}}
	g := NewGroup(NewPoller("s", fetcher, target, WithInterval(5*time.Millisecond)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	require.Eventually(t, func() bool { return target.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestGroup_RunStopsWhenOnePollerGivesUp(t *testing.T) {
	healthy := &scripted{results: []result{{bag: format.Bag{}}}}
	g := NewGroup(
		NewPoller("healthy", healthy, layer.NewSettable(), WithInterval(time.Hour)),
		NewPoller("broken", &scripted{results: []result{{err: errors.New("down")}}}, layer.NewSettable(),
			WithInterval(time.Millisecond), WithMaxFailures(2)),
	)

	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrTooManyFailures)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
