package workers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

type named struct {
	name   string
	worker Worker
}

type Workers struct {
	workers []named
	logger  *logger.Logger
}

func NewWorkers(log *logger.Logger) *Workers {
	return &Workers{logger: log}
}

// Add registers w under name. Workers start in registration order.
func (w *Workers) Add(name string, worker Worker) *Workers {
	w.workers = append(w.workers, named{name: name, worker: worker})
	return w
}

// Run starts every worker on its own goroutine and blocks until all of them
// return. The first failure cancels the context shared by the rest and is
// returned once they have stopped.
func (w *Workers) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, nw := range w.workers {
		nw := nw
		g.Go(func() error {
			w.logger.Debug().Str("func", "Workers.Run").Str("worker", nw.name).Msg("worker started")

			if err := nw.worker.Run(gctx); err != nil {
				w.logger.Err(err).Str("func", "Workers.Run").Str("worker", nw.name).Msg("worker failed")
				return fmt.Errorf("worker %s: %w", nw.name, err)
			}

			w.logger.Debug().Str("func", "Workers.Run").Str("worker", nw.name).Msg("worker stopped")
			return nil
		})
	}

	return g.Wait()
}
