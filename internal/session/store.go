// Package session holds the signed-in identity and broadcasts changes to it.
package session

import (
	"sync"

	"github.com/tgienger/taskflow/internal/models"
)

// Listener receives the identity after every mutation; nil means signed out.
type Listener func(identity *models.Identity)

type subscription struct {
	id int
	fn Listener
}

// Store holds the current identity.
//
// Every Set or Clear notifies each current subscriber exactly once, synchronously and in
// registration order. Subscribing does not replay the current value; use Current for that.
type Store struct {
	mu      sync.Mutex
	current *models.Identity
	subs    []subscription
	nextID  int
}

// NewStore returns an empty (signed out) store
func NewStore() *Store {
	return &Store{}
}

// Current returns a copy of the identity, or nil when signed out
func (s *Store) Current() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

// Set replaces the identity and notifies subscribers
func (s *Store) Set(identity models.Identity) {
	s.mu.Lock()
	s.current = &identity
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// Clear removes the identity and notifies subscribers
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(snapshot, subs)
}

// Subscribe registers fn and returns a function that removes it
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// snapshotLocked copies the identity and subscribers; s.mu must be held
func (s *Store) snapshotLocked() (*models.Identity, []subscription) {
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	if s.current == nil {
		return nil, subs
	}
	identity := *s.current
	return &identity, subs
}

// notify runs outside the lock so listeners may read the store
func notify(snapshot *models.Identity, subs []subscription) {
	for _, sub := range subs {
		if snapshot == nil {
			sub.fn(nil)
			continue
		}
		identity := *snapshot
		sub.fn(&identity)
	}
}
