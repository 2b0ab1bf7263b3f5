package sim

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/coupled/internal/dynamo"
)

// Job is one independent run in a sweep. Every job needs its own Controller.
type Job struct {
	Name       string
	Controller *Controller
	Config     RunConfig
	Metrics    []dynamo.Metric
}

type Outcome struct {
	Name   string
	Result *Result
	Wall   time.Duration
}

// Sweep runs jobs concurrently, one goroutine per job. Controllers are not
// shared, so each one is still driven from a single goroutine. The first
// failing job cancels the rest.
func Sweep(ctx context.Context, jobs []Job) ([]Outcome, error) {
	seen := make(map[*Controller]bool, len(jobs))
	for _, j := range jobs {
		if j.Controller == nil {
			return nil, fmt.Errorf("%w: job %q has no controller", dynamo.ErrInvalidConfig, j.Name)
		}
		if seen[j.Controller] {
			return nil, fmt.Errorf("%w: job %q shares a controller", dynamo.ErrInvalidConfig, j.Name)
		}
		seen[j.Controller] = true
	}

	outcomes := make([]Outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)

	for i, j := range jobs {
		g.Go(func() error {
			start := time.Now()
			res, err := Run(ctx, j.Controller, j.Config, j.Metrics...)
			if err != nil {
				return fmt.Errorf("%s: %w", j.Name, err)
			}
			outcomes[i] = Outcome{Name: j.Name, Result: res, Wall: time.Since(start)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
