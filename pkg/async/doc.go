// Package async runs functions in goroutines and collects their results
// through generic futures.
//
// Async starts fn immediately and returns a *Future; Await blocks until it
// finishes, AwaitContext additionally gives up when the caller's context ends.
// Map fans a function out over a slice and waits for every call, which is how
// the client fetches per-device settings in parallel:
//
//	settings, err := async.Map(ctx, deviceIDs, func(ctx context.Context, id string) (json.RawMessage, error) {
//	    return c.GetDeviceSettings(ctx, id)
//	})
//
// A context canceled before a goroutine starts its work completes the Future
// with the context error without calling fn.
package async
