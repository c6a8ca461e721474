// Package workers runs the client's background loops (network probing and
// the periodic queue drain) side by side under one context.
package workers

import "context"

// Worker is a background loop. Run blocks until ctx is done or the worker
// fails; a nil return means a clean shutdown.
//
// Example implementation:
//
//	type ticker struct{ every time.Duration }
//
//	func (w *ticker) Run(ctx context.Context) error {
//	    t := time.NewTicker(w.every)
//	    defer t.Stop()
//	    for {
//	        select {
//	        case <-ctx.Done():
//	            return nil
//	        case <-t.C:
//	            // do work
//	        }
//	    }
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// Func adapts a plain function to [Worker].
type Func func(ctx context.Context) error

// Run implements [Worker].
func (f Func) Run(ctx context.Context) error { return f(ctx) }
