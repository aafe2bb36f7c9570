// Package remote keeps settable layers in sync with remote property stores.
//
// A Fetcher reads the complete property set of one remote store. A Poller
// calls its fetcher at an interval and swaps the result into a settable
// layer, typically one registered with kasane.WithRemoteSource. Fetchers that
// can detect changes themselves (see Notifier) trigger an immediate poll.
//
// Example:
//
//	root, _ := kasane.New(kasane.WithRemoteSource("redis"))
//	target, _ := root.Registry().Remote("redis")
//
//	p := remote.NewPoller("redis", fetcher, target,
//	    remote.WithInterval(30*time.Second),
//	    remote.WithLogger(logger),
//	)
//	go p.Run(ctx)
package remote

import (
	"context"

	"github.com/yacchi/kasane/format"
)

// Fetcher reads the current property set of a remote store.
// A fetch returns the whole set; keys missing from it are removed from the layer.
type Fetcher interface {
	Fetch(ctx context.Context) (format.Bag, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (format.Bag, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context) (format.Bag, error) {
	return f(ctx)
}

// Notifier is implemented by fetchers that can tell when their data changed.
// Watch blocks until ctx is done, calling notify after each change.
type Notifier interface {
	Watch(ctx context.Context, notify func()) error
}
