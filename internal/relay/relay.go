// Package relay forwards commit batches to an external broadcast transport,
// a second fan-out path next to the in-process event bus.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"commitsonic/internal/db"
	"commitsonic/internal/env"
	"commitsonic/internal/models"
)

const (
	DriverNone  = "none"
	DriverRedis = "redis"
	DriverMQTT  = "mqtt"
)

// Relay publishes a batch of commits for one repository.
type Relay interface {
	Publish(ctx context.Context, repoFullName string, commits []models.Commit) error
	Close() error
}

// Message is the payload written to the external channel.
type Message struct {
	Channel   string          `json:"channel"`
	Repo      string          `json:"repo"`
	Commits   []models.Commit `json:"commits"`
	Published time.Time       `json:"published"`
}

// ChannelName derives the canonical channel for owner/name.
func ChannelName(owner, name string) string {
	return "repo-" + strings.ToLower(owner) + "-" + strings.ToLower(name)
}

// ChannelFor derives the channel from a full repository name.
func ChannelFor(repoFullName string) (string, error) {
	owner, name, ok := models.SplitRepoName(repoFullName)
	if !ok {
		return "", fmt.Errorf("relay: malformed repository name %q", repoFullName)
	}
	return ChannelName(owner, name), nil
}

func encode(repoFullName string, commits []models.Commit) (string, []byte, error) {
	channel, err := ChannelFor(repoFullName)
	if err != nil {
		return "", nil, err
	}

	payload, err := json.Marshal(Message{
		Channel:   channel,
		Repo:      repoFullName,
		Commits:   commits,
		Published: time.Now().UTC(),
	})
	if err != nil {
		return "", nil, fmt.Errorf("relay: failed to marshal commits: %w", err)
	}
	return channel, payload, nil
}

// Noop drops every batch.
type Noop struct{}

func (Noop) Publish(context.Context, string, []models.Commit) error { return nil }

func (Noop) Close() error { return nil }

// Open builds the relay named by driver from the environment settings.
func Open(driver string) (Relay, error) {
	switch driver {
	case DriverNone, "":
		return Noop{}, nil
	case DriverRedis:
		if err := db.InitCache(env.REDIS_ADDR, env.REDIS_PASSWORD, env.REDIS_DB); err != nil {
			return nil, err
		}
		return NewRedisRelay(db.RDB), nil
	case DriverMQTT:
		return NewMQTTRelay(env.MQTT_BROKER, env.MQTT_CLIENT_ID)
	default:
		return nil, fmt.Errorf("relay: unknown driver %q", driver)
	}
}
