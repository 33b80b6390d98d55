// Package resilience holds the failure-handling primitives shared by the
// infrastructure components:
//
//   - Retry and RetryFunc repeat an operation with exponential backoff.
//   - Breaker fails fast after repeated failures and probes for recovery.
//   - Bucket and KeyedLimiter are token buckets; KeyedLimiter keeps one
//     bucket per caller.
//
// Every type takes an optional clock so callers can test timing without
// sleeping.
package resilience
