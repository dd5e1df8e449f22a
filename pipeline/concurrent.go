package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kbukum/apptemplate/logger"
)

const tracerName = "github.com/kbukum/apptemplate/pipeline"

var (
	// ErrInvalidConcurrency is returned when the concurrency limit is below 1.
	ErrInvalidConcurrency = errors.New("pipeline: concurrency must be at least 1")

	// ErrTransformPanic is the cause of a TransformError raised by a panicking transform.
	ErrTransformPanic = errors.New("pipeline: transform panicked")
)

// TransformError reports the failure of a transform for one consumed item.
type TransformError struct {
	// Index is the position of the item in consumption order, starting at 0.
	Index int
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("pipeline: transform of item %d failed: %v", e.Index, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// mapState is owned by a single MapConcurrent call.
type mapState[U any] struct {
	mu       sync.Mutex
	out      []U
	firstErr error
}

// fail records err unless an earlier failure is already held.
func (s *mapState[U]) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstErr == nil {
		s.firstErr = err
	}
}

func (s *mapState[U]) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstErr
}

func (s *mapState[U]) collect(vals []U) {
	if len(vals) == 0 {
		return
	}
	s.mu.Lock()
	s.out = append(s.out, vals...)
	s.mu.Unlock()
}

// MapConcurrent pulls items from source and runs fn on each one in its own
// goroutine, keeping at most concurrency calls in flight. Outputs of every
// successful call are flattened into the result in completion order.
//
// Before each pull the driver takes a free slot. When every slot is busy it
// waits for one to free and then checks for failures: once a failure has
// been observed no further items are pulled, and calls already in flight
// are allowed to finish. A pull that finds a free slot right away is never
// held back by a failure. The first failure observed is returned after the drain,
// and no partial results are returned alongside it. A failure of fn is
// reported as a *TransformError; errors from source.Next or ctx are returned
// as is.
//
// fn receives ctx unchanged: MapConcurrent never cancels work it has started.
func MapConcurrent[T, U any](ctx context.Context, source Iterator[T], fn func(context.Context, T) ([]U, error), concurrency int) ([]U, error) {
	if concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.MapConcurrent",
		trace.WithAttributes(attribute.Int("pipeline.concurrency", concurrency)))
	defer span.End()

	log := logger.Get("pipeline")

	var (
		state    = mapState[U]{out: make([]U, 0)}
		slots    = semaphore.NewWeighted(int64(concurrency))
		tasks    errgroup.Group
		consumed int
	)

	for {
		if err := ctx.Err(); err != nil {
			state.fail(err)
			break
		}
		// Failures are only observed after waiting for a busy slot to free.
		if !slots.TryAcquire(1) {
			if err := slots.Acquire(ctx, 1); err != nil {
				state.fail(err)
				break
			}
			if err := ctx.Err(); err != nil {
				slots.Release(1)
				state.fail(err)
				break
			}
			if err := state.err(); err != nil {
				slots.Release(1)
				log.Debug("Failure observed, no longer pulling", map[string]interface{}{
					"consumed": consumed,
					"error":    err.Error(),
				})
				break
			}
		}

		item, ok, err := source.Next(ctx)
		if err != nil {
			slots.Release(1)
			state.fail(err)
			break
		}
		if !ok {
			slots.Release(1)
			break
		}

		index := consumed
		consumed++
		tasks.Go(func() error {
			defer slots.Release(1)
			vals, err := invoke(ctx, fn, item)
			if err != nil {
				state.fail(&TransformError{Index: index, Err: err})
				return nil
			}
			state.collect(vals)
			return nil
		})
	}

	// Outstanding calls always settle before the outcome is decided.
	_ = tasks.Wait()

	span.SetAttributes(
		attribute.Int("pipeline.items_consumed", consumed),
		attribute.Int("pipeline.outputs", len(state.out)),
	)

	if err := state.err(); err != nil {
		recordMap(ctx, consumed, 0, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("Concurrent map failed", map[string]interface{}{
			"consumed": consumed,
			"error":    err.Error(),
		})
		return nil, err
	}

	recordMap(ctx, consumed, len(state.out), "ok")
	log.Debug("Concurrent map completed", map[string]interface{}{
		"consumed": consumed,
		"outputs":  len(state.out),
	})
	return state.out, nil
}

// recordMap counts the items a MapConcurrent call consumed and produced.
func recordMap(ctx context.Context, consumed, outputs int, outcome string) {
	meter := otel.Meter(tracerName)
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))

	if items, err := meter.Int64Counter("pipeline.map.items",
		metric.WithDescription("Items pulled from the source by MapConcurrent")); err == nil {
		items.Add(ctx, int64(consumed), attrs)
	}
	if outs, err := meter.Int64Counter("pipeline.map.outputs",
		metric.WithDescription("Values returned by MapConcurrent")); err == nil {
		outs.Add(ctx, int64(outputs), attrs)
	}
}

func invoke[T, U any](ctx context.Context, fn func(context.Context, T) ([]U, error), item T) (vals []U, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTransformPanic, r)
		}
	}()
	return fn(ctx, item)
}

// FlatMapConcurrent applies fn to every upstream value with up to n calls in
// flight and yields the flattened outputs. The upstream is consumed in full
// by MapConcurrent on the first pull, so order is not preserved.
func FlatMapConcurrent[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) ([]O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &flatMapConcurrentIter[I, O]{source: p.create(ctx), n: n, fn: fn}
		},
	}
}

type flatMapConcurrentIter[I, O any] struct {
	source  Iterator[I]
	n       int
	fn      func(context.Context, I) ([]O, error)
	started bool
	results []O
	index   int
	err     error
}

func (it *flatMapConcurrentIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	if !it.started {
		it.started = true
		it.results, it.err = MapConcurrent(ctx, it.source, it.fn, it.n)
	}
	if it.err != nil {
		return zero, false, it.err
	}
	if it.index >= len(it.results) {
		return zero, false, nil
	}
	val := it.results[it.index]
	it.index++
	return val, true, nil
}

func (it *flatMapConcurrentIter[I, O]) Close() error { return it.source.Close() }
