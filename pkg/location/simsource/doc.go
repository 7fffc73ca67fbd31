// Package simsource is an in-memory location backend and a scripted host for
// tests and the demo command.
package simsource
