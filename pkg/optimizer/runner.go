package optimizer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/raykavin/stratbench/pkg/logger"
	"github.com/schollz/progressbar/v3"
)

// runner evaluates parameter sets on a bounded number of goroutines
type runner struct {
	parallelism int
	log         logger.Logger
	progress    io.Writer
}

func newRunner(config *Config) runner {
	parallelism := config.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return runner{parallelism: parallelism, log: config.Logger, progress: config.Progress}
}

// run evaluates every set and returns the results in input order, then sorted
// by targetMetric. The first evaluation error stops the run.
func (r runner) run(
	ctx context.Context,
	evaluator Evaluator,
	parameterSets []ParameterSet,
	targetMetric MetricName,
	maximize bool,
) ([]*Result, error) {
	var (
		results   = make([]*Result, len(parameterSets))
		wg        sync.WaitGroup
		mutex     sync.Mutex
		errCh     = make(chan error, 1)
		semaphore = make(chan struct{}, r.parallelism)
		bar       *progressbar.ProgressBar
	)

	if r.progress != nil {
		bar = progressbar.NewOptions(len(parameterSets),
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription("optimizing"),
			progressbar.OptionShowCount(),
		)
	}

	stopped := func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		default:
			return nil
		}
	}

	var err error
	for i, params := range parameterSets {
		if err = stopped(); err != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(index int, paramSet ParameterSet) {
			defer wg.Done()
			defer func() { <-semaphore }()

			r.debugf("evaluating parameter set %d/%d %s", index+1, len(parameterSets), FormatParameterSet(paramSet))

			result, err := evaluator.Evaluate(ctx, paramSet)
			if err != nil {
				select {
				case errCh <- fmt.Errorf("evaluation error %s: %w", FormatParameterSet(paramSet), err):
				default:
				}
				return
			}

			mutex.Lock()
			results[index] = result
			if bar != nil {
				if err := bar.Add(1); err != nil {
					r.debugf("update progressbar fail: %v", err)
				}
			}
			mutex.Unlock()
		}(i, params)
	}

	wg.Wait()

	if err == nil {
		err = stopped()
	}
	if bar != nil {
		_ = bar.Finish()
	}

	completed := make([]*Result, 0, len(results))
	for _, result := range results {
		if result != nil {
			completed = append(completed, result)
		}
	}

	sort.Stable(ResultSorter{
		Results:    completed,
		MetricName: string(targetMetric),
		Maximize:   maximize,
	})

	return completed, err
}

func (r runner) logf(format string, args ...any) {
	if r.log != nil {
		r.log.Infof(format, args...)
	}
}

func (r runner) debugf(format string, args ...any) {
	if r.log != nil {
		r.log.Debugf(format, args...)
	}
}
