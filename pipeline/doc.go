// Package pipeline provides pull-based data pipelines and a bounded
// concurrent mapper.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, or ForEach. Sources are single-pass Iterators built with FromSlice,
// FromChannel, FromFunc or From.
//
// # Concurrent mapping
//
// MapConcurrent consumes an Iterator in order and runs an asynchronous
// transform per item, producing zero or more outputs each. At most n
// transforms run at once. The first failure stops further pulls, the calls
// already in flight are drained, and that first failure is returned:
//
//	src := pipeline.FromSlice([]string{"a", "b", "c"}).Iter(ctx)
//	out, err := pipeline.MapConcurrent(ctx, src, func(ctx context.Context, s string) ([]string, error) {
//	    return lookup(ctx, s)
//	}, 4)
//
// Outputs arrive in completion order, not input order.
package pipeline
