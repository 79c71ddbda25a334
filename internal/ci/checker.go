// Package ci fills in the CI status of freshly ingested commits once the
// upstream checks have had time to report.
package ci

import (
	"context"
	"sync"
	"time"

	"commitsonic/internal/logger"
	"commitsonic/internal/models"
	"commitsonic/internal/music"
	"commitsonic/internal/store"

	"go.uber.org/zap"
)

// StatusReader returns the combined status state of a commit ref.
type StatusReader interface {
	CombinedState(ctx context.Context, owner, name, ref string) (string, error)
}

// Checker waits a fixed delay after a push, then looks up every commit's
// combined status once. Failed lookups are logged and dropped.
type Checker struct {
	statuses StatusReader
	commits  store.CommitStore
	delay    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewChecker(statuses StatusReader, commits store.CommitStore, delay time.Duration) *Checker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Checker{
		statuses: statuses,
		commits:  commits,
		delay:    delay,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// MapState converts a GitHub combined status state to a CIStatus.
func MapState(state string) models.CIStatus {
	switch state {
	case "success":
		return models.CIStatusPass
	case "failure", "error":
		return models.CIStatusFail
	case "pending":
		return models.CIStatusPending
	default:
		return models.CIStatusUnknown
	}
}

// Schedule checks commits of repoFullName in the background.
func (c *Checker) Schedule(repoFullName string, commits []models.Commit) {
	if len(commits) == 0 {
		return
	}

	owner, name, ok := models.SplitRepoName(repoFullName)
	if !ok {
		logger.Warn("ci check skipped for malformed repository", zap.String("repo", repoFullName))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		timer := time.NewTimer(c.delay)
		defer timer.Stop()

		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
		}

		for _, commit := range commits {
			if c.ctx.Err() != nil {
				return
			}
			c.check(owner, name, commit)
		}
	}()
}

func (c *Checker) check(owner, name string, commit models.Commit) {
	log := logger.WithContext(
		zap.String("repo", commit.RepoID),
		zap.String("commit", commit.ID),
	)

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	state, err := c.statuses.CombinedState(ctx, owner, name, commit.ID)
	if err != nil {
		log.Warn("ci status lookup failed", zap.Error(err))
		return
	}

	status := MapState(state)
	if status == commit.CIStatus {
		return
	}

	commit.CIStatus = status
	params := music.CommitToMusicalParams(commit)

	if err := c.commits.UpdateCIStatus(ctx, commit.RepoID, commit.ID, status, params); err != nil {
		log.Warn("ci status update failed", zap.Error(err))
		return
	}

	log.Debug("ci status updated",
		zap.String("ci_status", string(status)),
		zap.String("scale", string(params.Scale)))
}

// Close cancels pending checks and waits for running ones to stop.
func (c *Checker) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
