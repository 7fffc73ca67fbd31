package simsource

import (
	"context"
	"sync"
	"time"

	"github.com/ib-77/locchain/pkg/location"
)

type registration struct {
	provider string
	listener location.Listener
	timer    *time.Timer
}

type scheduled struct {
	pos   location.Position
	delay time.Duration
}

// Source is an in-memory location.Source. Callbacks run while the source
// holds its lock, so a listener must not call back into the source.
type Source struct {
	mu            sync.Mutex
	enabled       map[string]bool
	last          map[string]location.Position
	lastErr       map[string]error
	scheduled     map[string]scheduled
	listeners     map[location.Subscription]*registration
	nextSub       location.Subscription
	registrations int
}

func New() *Source {
	return &Source{
		enabled:   make(map[string]bool),
		last:      make(map[string]location.Position),
		lastErr:   make(map[string]error),
		scheduled: make(map[string]scheduled),
		listeners: make(map[location.Subscription]*registration),
	}
}

func (s *Source) IsProviderEnabled(provider string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[provider]
}

// SetEnabled switches a provider. Disabling it notifies its pending listeners.
func (s *Source) SetEnabled(provider string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled[provider] = enabled
	if enabled {
		return
	}
	for _, r := range s.listeners {
		if r.provider == provider && r.listener.OnProviderDisabled != nil {
			r.listener.OnProviderDisabled(provider)
		}
	}
}

// SetLast stores pos as the cached fix of its provider.
func (s *Source) SetLast(pos location.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[pos.Provider] = pos
	delete(s.lastErr, pos.Provider)
}

// SetLastError makes LastPosition fail for provider.
func (s *Source) SetLastError(provider string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr[provider] = err
}

func (s *Source) ClearLast(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, provider)
	delete(s.lastErr, provider)
}

func (s *Source) LastPosition(_ context.Context, provider string) (location.Position, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.lastErr[provider]; ok {
		return location.Position{}, false, err
	}
	pos, ok := s.last[provider]
	return pos, ok, nil
}

// Schedule makes every later request on provider answer with pos after delay.
func (s *Source) Schedule(provider string, pos location.Position, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos.Provider = provider
	s.scheduled[provider] = scheduled{pos: pos, delay: delay}
}

func (s *Source) RequestSingleUpdate(provider string, l location.Listener) (location.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	sub := s.nextSub
	r := &registration{provider: provider, listener: l}
	s.listeners[sub] = r
	s.registrations++

	if sc, ok := s.scheduled[provider]; ok {
		r.timer = time.AfterFunc(sc.delay, func() { s.deliver(sub, sc.pos) })
	}
	return sub, nil
}

func (s *Source) RemoveUpdates(sub location.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(sub)
}

func (s *Source) removeLocked(sub location.Subscription) {
	r, ok := s.listeners[sub]
	if !ok {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	delete(s.listeners, sub)
}

func (s *Source) deliver(sub location.Subscription, pos location.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.listeners[sub]
	if !ok {
		return
	}
	s.removeLocked(sub)
	if r.listener.OnPosition != nil {
		r.listener.OnPosition(pos)
	}
}

// Push delivers pos to every pending listener of its provider, as a single
// update, and reports how many received it.
func (s *Source) Push(pos location.Position) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for sub, r := range s.listeners {
		if r.provider != pos.Provider {
			continue
		}
		s.removeLocked(sub)
		if r.listener.OnPosition != nil {
			r.listener.OnPosition(pos)
		}
		n++
	}
	return n
}

// Active is the number of registered listeners.
func (s *Source) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Registrations counts every RequestSingleUpdate ever accepted.
func (s *Source) Registrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registrations
}
