// Package chain builds fallback chains over a manager.Manager.
//
// A chain is an ordered list of entries, each a last-known fetch or a live
// request on one provider. Create folds them strictly in order: the first
// entry with a position wins, an entry that completes empty hands over to the
// next one, and an entry failure the entry does not suppress aborts the chain.
// When every entry is empty the chain yields its default, if one was set.
//
//	op := chain.New(m).
//		AddLastResult("network", location.Within(30, time.Minute)).
//		AddLiveRequest("gps", location.Within(10, time.Second), permGate).
//		SetDefault(home).
//		Create()
//
// Builders are values: every Add and SetDefault returns a new builder and
// leaves the receiver unchanged, so a common prefix can be shared.
package chain
