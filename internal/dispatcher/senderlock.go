package dispatcher

import "sync"

// senderLocks serializes message handling per sender id. Two quick messages
// from one sender must observe each other's writes; unrelated senders run in
// parallel.
type senderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSenderLocks() *senderLocks {
	return &senderLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the given sender and returns the release function.
func (s *senderLocks) Acquire(senderID string) func() {
	s.mu.Lock()
	l, ok := s.locks[senderID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[senderID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
