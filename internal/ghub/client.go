// Package ghub talks to the GitHub REST API: it installs push webhooks on
// registered repositories and reads combined commit statuses for the CI
// checker.
package ghub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"commitsonic/internal/logger"

	"github.com/google/go-github/v56/github"
	"go.uber.org/zap"
)

var (
	ErrPermission = errors.New("insufficient permission to manage webhooks on this repository")
	ErrHookExists = errors.New("a webhook with this configuration already exists")
)

type Client struct {
	gh *github.Client
}

// New builds a client for apiURL (empty means api.github.com). An empty token
// gives an anonymous client that can read public statuses only.
func New(token string, apiURL string) (*Client, error) {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}

	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		base, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", apiURL, err)
		}
		gh.BaseURL = base
	}

	return &Client{gh: gh}, nil
}

type hookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Secret      string `json:"secret"`
	InsecureSSL string `json:"insecure_ssl"`
}

type hookRequest struct {
	Name   string     `json:"name"`
	Active bool       `json:"active"`
	Events []string   `json:"events"`
	Config hookConfig `json:"config"`
}

// CreatePushHook installs a JSON push webhook signed with secret and returns
// its id.
func (c *Client) CreatePushHook(ctx context.Context, owner, name, callbackURL, secret string) (int64, error) {
	body := hookRequest{
		Name:   "web",
		Active: true,
		Events: []string{"push"},
		Config: hookConfig{
			URL:         callbackURL,
			ContentType: "json",
			Secret:      secret,
			InsecureSSL: "0",
		},
	}

	req, err := c.gh.NewRequest(http.MethodPost, fmt.Sprintf("repos/%s/%s/hooks", owner, name), body)
	if err != nil {
		return 0, err
	}

	hook := new(github.Hook)
	if _, err := c.gh.Do(ctx, req, hook); err != nil {
		return 0, mapError(err)
	}

	logger.Info("github webhook created",
		zap.String("repo", owner+"/"+name),
		zap.Int64("hook_id", hook.GetID()))
	return hook.GetID(), nil
}

// CombinedState returns the combined status state of ref: success, failure,
// error or pending.
func (c *Client) CombinedState(ctx context.Context, owner, name, ref string) (string, error) {
	status, _, err := c.gh.Repositories.GetCombinedStatus(ctx, owner, name, ref, nil)
	if err != nil {
		return "", mapError(err)
	}
	return status.GetState(), nil
}

func mapError(err error) error {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return err
	}

	switch ghErr.Response.StatusCode {
	case http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrPermission, ghErr.Message)
	case http.StatusUnprocessableEntity:
		if hookExists(ghErr) {
			return fmt.Errorf("%w: %s", ErrHookExists, ghErr.Message)
		}
	}
	return err
}

func hookExists(ghErr *github.ErrorResponse) bool {
	if strings.Contains(strings.ToLower(ghErr.Message), "already exists") {
		return true
	}
	for _, e := range ghErr.Errors {
		if strings.Contains(strings.ToLower(e.Message), "already exists") {
			return true
		}
	}
	return false
}
