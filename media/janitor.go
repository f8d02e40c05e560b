package media

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultJanitorWorkers = 4
	deleteTimeout         = 30 * time.Second
)

// Janitor deletes images that no record references any more. Deletions run in
// the background with bounded concurrency; failures are logged, never returned.
type Janitor struct {
	store   Store
	group   errgroup.Group
	pending sync.WaitGroup
}

func NewJanitor(store Store, workers int) *Janitor {
	if workers <= 0 {
		workers = defaultJanitorWorkers
	}
	j := &Janitor{store: store}
	j.group.SetLimit(workers)
	return j
}

// Discard schedules deletion of the given URLs and returns immediately.
func (j *Janitor) Discard(urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		j.pending.Add(1)
		go func() {
			defer j.pending.Done()
			j.group.Go(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
				defer cancel()

				if err := j.store.Delete(ctx, url); err != nil {
					log.Warn().Err(err).Str("url", url).Msg("orphaned image cleanup failed")
					return nil
				}
				log.Debug().Str("url", url).Msg("orphaned image deleted")
				return nil
			})
		}()
	}
}

// Wait blocks until every scheduled deletion has finished.
func (j *Janitor) Wait() {
	j.pending.Wait()
	_ = j.group.Wait()
}
