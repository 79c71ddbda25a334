package githubhooks

import (
	"errors"
	"strings"
	"time"

	"commitsonic/internal/lang"
	"commitsonic/internal/models"
	"commitsonic/internal/music"
)

// webhookPayload models the fields shared by the ping and push hooks that we
// rely on.
type webhookPayload struct {
	Ref        string            `json:"ref"`
	Zen        string            `json:"zen"`
	HookID     int64             `json:"hook_id"`
	Repository *hookRepository   `json:"repository"`
	Commits    []pushEventCommit `json:"commits"`
}

type hookRepository struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
}

// pushEventCommit mirrors the subset of commit data GitHub sends per commit.
type pushEventCommit struct {
	ID        string                `json:"id"`
	Message   string                `json:"message"`
	Timestamp string                `json:"timestamp"`
	Author    pushEventCommitAuthor `json:"author"`
	Added     []string              `json:"added"`
	Removed   []string              `json:"removed"`
	Modified  []string              `json:"modified"`
}

type pushEventCommitAuthor struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// processPushCommits turns every commit of a push into a Commit with its
// musical parameters already computed.
func processPushCommits(repoFullName string, commits []pushEventCommit) ([]models.Commit, error) {
	out := make([]models.Commit, 0, len(commits))
	for _, pc := range commits {
		c, err := convertCommit(repoFullName, pc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// convertCommit normalises webhook commit data into the Commit model.
func convertCommit(repoFullName string, pc pushEventCommit) (models.Commit, error) {
	sha := strings.TrimSpace(pc.ID)
	if sha == "" {
		return models.Commit{}, errors.New("missing commit sha")
	}

	timestamp := strings.TrimSpace(pc.Timestamp)
	if timestamp == "" {
		return models.Commit{}, errors.New("missing commit timestamp")
	}

	parsedTs, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return models.Commit{}, err
	}

	touched := touchedFiles(pc)
	languages := lang.Histogram(touched)

	commit := models.Commit{
		ID:        sha,
		RepoID:    repoFullName,
		Timestamp: parsedTs.UTC(),
		Author:    authorOf(pc.Author),
		Message:   pc.Message,
		Stats: models.CommitStats{
			Additions:    len(pc.Added) + len(pc.Modified),
			Deletions:    len(pc.Removed),
			FilesChanged: len(touched),
		},
		PrimaryLanguage: lang.Primary(languages),
		Languages:       languages,
		CIStatus:        models.CIStatusUnknown,
	}
	commit.MusicalParams = music.CommitToMusicalParams(commit)

	return commit, nil
}

// touchedFiles is the union of added, modified and removed paths in the order
// GitHub lists them.
func touchedFiles(pc pushEventCommit) []string {
	seen := make(map[string]struct{}, len(pc.Added)+len(pc.Modified)+len(pc.Removed))
	var files []string
	for _, group := range [][]string{pc.Added, pc.Modified, pc.Removed} {
		for _, f := range group {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	return files
}

func authorOf(a pushEventCommitAuthor) string {
	if u := strings.TrimSpace(a.Username); u != "" {
		return u
	}
	return strings.TrimSpace(a.Name)
}
