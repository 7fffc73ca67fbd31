// Package behavior implements request behaviors: gates that hold an operation
// until the host reports an answer (permissions, settings) or a rate limiter
// admits it, and filters that swallow selected failures.
//
// Host-driven gates share one wait/resume protocol. Each wait subscribes to
// the matching events stream under a fresh uuid token, hands the token to the
// host together with the request, and resumes only on the event that carries
// the same token. Cancelling ctx releases the subscription.
package behavior
