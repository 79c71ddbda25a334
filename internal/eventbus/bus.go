// Package eventbus routes freshly ingested commits to live listeners of a
// repository.
//
// A Bus is an explicit instance shared by the webhook and stream handlers.
// Subscribers are kept per repository full name in registration order.
// Broadcast snapshots the list under the lock, delivers outside it, and then
// prunes every subscriber that reported itself gone. Pruning goes by ID, so a
// subscription added while a broadcast is in flight is never lost.
package eventbus

import (
	"errors"
	"sync"

	"commitsonic/internal/logger"
	"commitsonic/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrBusClosed = errors.New("eventbus: bus is closed")

// DeliverFunc receives one batch of commits and reports whether the
// subscriber is still live. Returning false removes the subscriber.
// Batches are shared between subscribers and must not be modified.
// Calls for one subscriber never overlap, even when broadcasts for its repo
// run concurrently, so a callback must not broadcast to its own repository.
type DeliverFunc func(commits []models.Commit) bool

type subscriber struct {
	id string
	// deliverMu serializes deliver across concurrent broadcasts.
	deliverMu sync.Mutex
	deliver   DeliverFunc
	// stop is called when the bus drops the subscriber on Close.
	stop func()
}

// Bus is a keyed publish/subscribe registry. The zero value is not usable;
// call New.
type Bus struct {
	mu     sync.Mutex
	repos  map[string][]*subscriber
	closed bool
}

func New() *Bus {
	return &Bus{
		repos: make(map[string][]*subscriber),
	}
}

// SubscribeFunc registers deliver for repo and returns the subscription ID.
func (b *Bus) SubscribeFunc(repo string, deliver DeliverFunc) (string, error) {
	sub := &subscriber{
		id:      uuid.NewString(),
		deliver: deliver,
	}
	if err := b.add(repo, sub); err != nil {
		return "", err
	}
	return sub.id, nil
}

// Subscribe registers a channel-backed subscription for repo. buffer is the
// number of undelivered batches tolerated before the subscriber is treated
// as gone.
func (b *Bus) Subscribe(repo string, buffer int) (*Subscription, error) {
	if buffer < 1 {
		buffer = 1
	}

	s := &Subscription{
		ID:      uuid.NewString(),
		Repo:    repo,
		bus:     b,
		commits: make(chan []models.Commit, buffer),
		done:    make(chan struct{}),
	}

	sub := &subscriber{
		id:      s.ID,
		deliver: s.deliver,
		stop:    s.cancel,
	}
	if err := b.add(repo, sub); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *Bus) add(repo string, sub *subscriber) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	b.repos[repo] = append(b.repos[repo], sub)

	logger.Debug("subscriber added",
		zap.String("repo", repo),
		zap.String("subscription_id", sub.id),
		zap.Int("repo_clients", len(b.repos[repo])))
	return nil
}

// Unsubscribe removes exactly one registration. It reports whether the
// registration existed; calling it twice is harmless.
func (b *Bus) Unsubscribe(repo, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := b.removeLocked(repo, map[string]struct{}{id: {}})
	if removed > 0 {
		logger.Debug("subscriber removed",
			zap.String("repo", repo),
			zap.String("subscription_id", id))
	}
	return removed > 0
}

// Broadcast hands commits to every subscriber of repo in registration order
// and returns how many accepted the batch. A repo without subscribers is a
// no-op.
func (b *Bus) Broadcast(repo string, commits []models.Commit) int {
	b.mu.Lock()
	subs := b.repos[repo]
	snapshot := make([]*subscriber, len(subs))
	copy(snapshot, subs)
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return 0
	}

	delivered := 0
	var gone map[string]struct{}
	for _, sub := range snapshot {
		if safeDeliver(sub, commits) {
			delivered++
			continue
		}
		if gone == nil {
			gone = make(map[string]struct{})
		}
		gone[sub.id] = struct{}{}
	}

	if len(gone) > 0 {
		b.mu.Lock()
		b.removeLocked(repo, gone)
		b.mu.Unlock()
	}

	logger.Debug("commits broadcast",
		zap.String("repo", repo),
		zap.Int("commit_count", len(commits)),
		zap.Int("delivered", delivered),
		zap.Int("pruned", len(gone)))

	return delivered
}

// safeDeliver treats a panicking subscriber as gone.
func safeDeliver(sub *subscriber, commits []models.Commit) (live bool) {
	sub.deliverMu.Lock()
	defer sub.deliverMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("subscriber panicked during delivery",
				zap.String("subscription_id", sub.id),
				zap.Any("panic", r))
			live = false
		}
	}()
	return sub.deliver(commits)
}

// removeLocked drops the given IDs from repo and deletes the repo entry once
// it is empty. b.mu must be held.
func (b *Bus) removeLocked(repo string, ids map[string]struct{}) int {
	subs, ok := b.repos[repo]
	if !ok {
		return 0
	}

	kept := subs[:0:0]
	for _, sub := range subs {
		if _, drop := ids[sub.id]; !drop {
			kept = append(kept, sub)
		}
	}

	removed := len(subs) - len(kept)
	if len(kept) == 0 {
		delete(b.repos, repo)
	} else {
		b.repos[repo] = kept
	}
	return removed
}

// ClientCount returns the number of active subscriptions for repo.
func (b *Bus) ClientCount(repo string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.repos[repo])
}

// TotalClientCount returns the number of active subscriptions overall.
func (b *Bus) TotalClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for _, subs := range b.repos {
		total += len(subs)
	}
	return total
}

// Repos returns the repositories that currently have subscribers.
func (b *Bus) Repos() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	repos := make([]string, 0, len(b.repos))
	for repo := range b.repos {
		repos = append(repos, repo)
	}
	return repos
}

// Close drops every subscription and rejects new ones. Channel subscriptions
// see their Done channel closed.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	repos := b.repos
	b.repos = make(map[string][]*subscriber)
	b.mu.Unlock()

	for _, subs := range repos {
		for _, sub := range subs {
			if sub.stop != nil {
				sub.stop()
			}
		}
	}
}
