// Package events carries the host's asynchronous answers (permission results
// and activity results) to the gates waiting for them, correlated by a
// per-request token.
package events
