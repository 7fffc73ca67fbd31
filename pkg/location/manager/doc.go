// Package manager is the single-provider engine: a staleness-checked fetch of
// the last cached fix and a timeout-bounded, cancellable request for one live
// fix. Every listener it registers is removed before its result is sent.
package manager
