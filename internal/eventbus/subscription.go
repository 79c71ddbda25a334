package eventbus

import (
	"sync"

	"commitsonic/internal/models"
)

// Subscription is a channel-backed registration owned by one live
// connection. The connection reads Commits until Done is closed and must
// call Close on every exit path.
type Subscription struct {
	ID   string
	Repo string

	bus     *Bus
	commits chan []models.Commit
	done    chan struct{}
	once    sync.Once
}

// Commits delivers broadcast batches in order.
func (s *Subscription) Commits() <-chan []models.Commit {
	return s.commits
}

// Done is closed once the subscription is no longer registered, either
// because Close was called, the consumer fell behind, or the bus closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.bus.Unsubscribe(s.Repo, s.ID)
	s.cancel()
}

func (s *Subscription) cancel() {
	s.once.Do(func() { close(s.done) })
}

// deliver never blocks: a full buffer means the consumer is gone or too slow
// and the subscription is cancelled.
func (s *Subscription) deliver(commits []models.Commit) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.commits <- commits:
		return true
	default:
		s.cancel()
		return false
	}
}
