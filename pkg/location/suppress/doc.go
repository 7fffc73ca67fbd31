// Package suppress converts selected failure kinds into a non-failure outcome
// for the three operation shapes used by the engine: zero-or-one value
// (Maybe), exactly one value (Single) and fire-and-forget (Completable).
package suppress
