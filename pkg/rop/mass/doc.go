// Package mass lifts rop.Result onto goroutines. An Op is a deferred
// asynchronous operation yielding exactly one result on a channel; Then,
// Transform and Complete compose Ops without blocking the caller until it
// chooses to Await.
package mass
