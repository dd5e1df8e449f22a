// Package resilience provides retry helpers for fault-tolerant calls.
//
//   - Retry: runs a call under a Policy (constant or exponential backoff,
//     jitter, retry filter)
//   - ManagedCall: retries a fixed number of times with a fixed delay,
//     logging each failure
//   - Sleep: context-aware sleep
//
// Example:
//
//	info, err := resilience.ManagedCall(ctx, func(ctx context.Context) (fs.FileInfo, error) {
//	    return os.Stat(path)
//	}, 2, time.Second)
package resilience
