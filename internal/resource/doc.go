// Package resource implements the Controller that bounds write pressure of a load run.
//
// The Controller manages three limits, all optional:
//
//   - Concurrency: caps write tasks in flight (per-item mode fan-out)
//   - Documents: token bucket on documents written per second
//   - Bytes: token bucket on payload bytes written per second
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  In-flight      │  Document rate  │  Byte rate              │
//	│  writes (sem)   │  (token bucket) │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireWrite   │  AcquireRate    │  AcquireRate            │
//	│  TryAcquire     │                 │                         │
//	│  ReleaseWrite   │                 │                         │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MaxInFlightWrites: 64,
//	    WritesPerSec:      500,
//	})
//
//	if err := rc.AcquireWrite(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWrite()
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
