// Package solo contains single-value, synchronous primitives over
// rop.Result[T]. Every primitive is empty-aware: an empty result is neither a
// success nor a failure and passes through untouched unless the primitive is
// about emptiness.
//
// Highlights:
// - Tee: side effect on success
// - FailOnError: post-condition check that can fail a success
// - Recover: rewrite a failure (never a cancel)
// - DefaultIfEmpty: fill an empty result
// - Finally: reduce to a concrete value via success/empty/error/cancel handlers
package solo
