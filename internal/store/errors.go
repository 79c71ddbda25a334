package store

import (
	"fmt"

	"commitsonic/internal/models"
)

// Common errors
var (
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrRepositoryNotFound = fmt.Errorf("repository not found")
	ErrCommitNotFound     = fmt.Errorf("commit not found")
	ErrListenerNotFound   = fmt.Errorf("listener not found")
	ErrDuplicate          = fmt.Errorf("record already exists")
	ErrDatabaseConnection = fmt.Errorf("database connection error")
	ErrTransactionFailed  = fmt.Errorf("transaction failed")
	ErrUnknownDriver      = fmt.Errorf("unknown store driver")
)

func validateCommits(commits []models.Commit) error {
	for i, c := range commits {
		if c.ID == "" || c.RepoID == "" {
			return fmt.Errorf("%w: commit %d has no id or repo id", ErrInvalidInput, i)
		}
	}
	return nil
}

func validateRepo(repo *models.Repository) error {
	if repo == nil || repo.FullName == "" {
		return fmt.Errorf("%w: repository full name cannot be empty", ErrInvalidInput)
	}
	return nil
}
