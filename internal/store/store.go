// Package store persists commits, registered repositories and listener
// accounts. Handlers depend on the narrow interfaces; the backends are
// selected at startup by STORE_DRIVER.
package store

import (
	"context"

	"commitsonic/internal/models"
)

// CommitStore persists enriched commits.
type CommitStore interface {
	// CreateCommits stores commits keyed by (repoId, id). A commit that is
	// already stored is left untouched, so a redelivered webhook neither
	// duplicates nor resets it.
	CreateCommits(ctx context.Context, commits []models.Commit) error
	// UpdateCIStatus replaces the CI status of one commit together with the
	// musical parameters recomputed for it.
	UpdateCIStatus(ctx context.Context, repoID, commitID string, status models.CIStatus, params models.MusicalParams) error
	// RecentCommits returns up to limit commits of a repository, newest first.
	RecentCommits(ctx context.Context, repoID string, limit int) ([]models.Commit, error)
}

// RepoRegistry tracks registered repositories and their webhook secrets.
type RepoRegistry interface {
	GetRepoByFullName(ctx context.Context, fullName string) (*models.Repository, error)
	CreateRepo(ctx context.Context, repo *models.Repository) error
	UpdateRepo(ctx context.Context, repo *models.Repository) error
}

// ListenerStore holds listener accounts.
type ListenerStore interface {
	GetListener(ctx context.Context, username string) (*models.Listener, error)
	CreateListener(ctx context.Context, listener *models.Listener) error
}

// Store is everything a backend provides.
type Store interface {
	CommitStore
	RepoRegistry
	ListenerStore
	Close(ctx context.Context) error
}
