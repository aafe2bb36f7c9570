package remote

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group runs several pollers together.
type Group struct {
	pollers []*Poller
}

// NewGroup creates a group of pollers.
func NewGroup(pollers ...*Poller) *Group {
	return &Group{pollers: pollers}
}

// Add appends p. It must not be called while Run is executing.
func (g *Group) Add(p *Poller) {
	g.pollers = append(g.pollers, p)
}

// Len returns the number of pollers.
func (g *Group) Len() int {
	return len(g.pollers)
}

// PollOnce polls every source concurrently once. It returns the first error.
func (g *Group) PollOnce(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range g.pollers {
		eg.Go(func() error {
			_, err := p.PollOnce(ctx)
			return err
		})
	}
	return eg.Wait()
}

// Run runs every poller until ctx is done. If one poller gives up (see
// WithMaxFailures) the others are stopped and its error is returned.
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range g.pollers {
		eg.Go(func() error {
			return p.Run(ctx)
		})
	}
	return eg.Wait()
}
