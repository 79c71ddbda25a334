package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"commitsonic/internal/models"
)

type commitKey struct {
	repoID string
	id     string
}

// Memory keeps everything in process. It backs tests and single-node demos.
type Memory struct {
	mu        sync.RWMutex
	commits   map[commitKey]models.Commit
	repos     map[string]models.Repository
	listeners map[string]models.Listener
}

func NewMemory() *Memory {
	return &Memory{
		commits:   make(map[commitKey]models.Commit),
		repos:     make(map[string]models.Repository),
		listeners: make(map[string]models.Listener),
	}
}

func (m *Memory) CreateCommits(_ context.Context, commits []models.Commit) error {
	if err := validateCommits(commits); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range commits {
		key := commitKey{c.RepoID, c.ID}
		if _, exists := m.commits[key]; exists {
			continue
		}
		m.commits[key] = c
	}
	return nil
}

func (m *Memory) UpdateCIStatus(_ context.Context, repoID, commitID string, status models.CIStatus, params models.MusicalParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := commitKey{repoID, commitID}
	c, ok := m.commits[key]
	if !ok {
		return fmt.Errorf("%w: %s@%s", ErrCommitNotFound, repoID, commitID)
	}

	c.CIStatus = status
	c.MusicalParams = params
	m.commits[key] = c
	return nil
}

func (m *Memory) RecentCommits(_ context.Context, repoID string, limit int) ([]models.Commit, error) {
	m.mu.RLock()
	var out []models.Commit
	for key, c := range m.commits {
		if key.repoID == repoID {
			out = append(out, c)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Commit returns one stored commit.
func (m *Memory) Commit(repoID, commitID string) (models.Commit, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.commits[commitKey{repoID, commitID}]
	return c, ok
}

// CommitCount returns the number of stored commits across all repositories.
func (m *Memory) CommitCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.commits)
}

func (m *Memory) GetRepoByFullName(_ context.Context, fullName string) (*models.Repository, error) {
	if fullName == "" {
		return nil, fmt.Errorf("%w: repository full name cannot be empty", ErrInvalidInput)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, ok := m.repos[fullName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, fullName)
	}
	return &repo, nil
}

func (m *Memory) CreateRepo(_ context.Context, repo *models.Repository) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.repos[repo.FullName]; exists {
		return fmt.Errorf("%w: repository %s", ErrDuplicate, repo.FullName)
	}

	now := time.Now().UTC()
	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = now
	}
	repo.UpdatedAt = now
	m.repos[repo.FullName] = *repo
	return nil
}

func (m *Memory) UpdateRepo(_ context.Context, repo *models.Repository) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.repos[repo.FullName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRepositoryNotFound, repo.FullName)
	}

	repo.CreatedAt = existing.CreatedAt
	repo.UpdatedAt = time.Now().UTC()
	m.repos[repo.FullName] = *repo
	return nil
}

func (m *Memory) GetListener(_ context.Context, username string) (*models.Listener, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.listeners[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrListenerNotFound, username)
	}
	return &l, nil
}

func (m *Memory) CreateListener(_ context.Context, listener *models.Listener) error {
	if listener == nil || listener.Username == "" || listener.Password == "" {
		return fmt.Errorf("%w: listener needs a username and password hash", ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.listeners[listener.Username]; exists {
		return fmt.Errorf("%w: listener %s", ErrDuplicate, listener.Username)
	}
	if listener.CreatedAt.IsZero() {
		listener.CreatedAt = time.Now().UTC()
	}
	m.listeners[listener.Username] = *listener
	return nil
}

func (m *Memory) Close(context.Context) error {
	return nil
}
