// Package utils provides the concurrency helpers shared by retrieval and the
// search orchestrator.
//
//   - SemaphoreGatherWithResults runs independent graph traversals with bounded concurrency.
//   - WorkerPool runs per-persona pipelines over a fixed number of workers.
//   - Recover* helpers turn panics in those goroutines into PanicError values.
package utils
