package listeners

import (
	"context"
	"errors"
	"strings"
	"time"

	"commitsonic/internal/models"
	"commitsonic/internal/store"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAccount = errors.New("username and password must be provided")

// Create hashes password and stores a new listener account. cost 0 means
// bcrypt.DefaultCost.
func Create(ctx context.Context, accounts store.ListenerStore, username, password string, cost int) (*models.Listener, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidAccount
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	listener := &models.Listener{
		Username:  username,
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	}
	if err := accounts.CreateListener(ctx, listener); err != nil {
		return nil, err
	}
	return listener, nil
}
