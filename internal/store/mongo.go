package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commitsonic/internal/logger"
	"commitsonic/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Mongo stores each record kind in its own collection.
type Mongo struct {
	commits   *mongo.Collection
	repos     *mongo.Collection
	listeners *mongo.Collection
}

func NewMongo(commits, repos, listeners *mongo.Collection) *Mongo {
	return &Mongo{
		commits:   commits,
		repos:     repos,
		listeners: listeners,
	}
}

// EnsureIndexes creates the unique keys the store relies on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.commits.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "repoId", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "repoId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create commit indexes: %w", err)
	}

	_, err = m.repos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "fullName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create repository index: %w", err)
	}

	_, err = m.listeners.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create listener index: %w", err)
	}

	return nil
}

// CreateCommits upserts with $setOnInsert, so stored commits are never
// overwritten.
func (m *Mongo) CreateCommits(ctx context.Context, commits []models.Commit) error {
	if len(commits) == 0 {
		return nil
	}
	if err := validateCommits(commits); err != nil {
		return err
	}

	writes := make([]mongo.WriteModel, len(commits))
	for i, c := range commits {
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"repoId": c.RepoID, "id": c.ID}).
			SetUpdate(bson.M{"$setOnInsert": c}).
			SetUpsert(true)
	}

	res, err := m.commits.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to store commits: %w", err)
	}

	logger.Debug("commits stored",
		zap.String("repo", commits[0].RepoID),
		zap.Int("commit_count", len(commits)),
		zap.Int64("inserted", res.UpsertedCount))
	return nil
}

func (m *Mongo) UpdateCIStatus(ctx context.Context, repoID, commitID string, status models.CIStatus, params models.MusicalParams) error {
	if repoID == "" || commitID == "" {
		return fmt.Errorf("%w: repo id and commit id cannot be empty", ErrInvalidInput)
	}

	res, err := m.commits.UpdateOne(ctx,
		bson.M{"repoId": repoID, "id": commitID},
		bson.M{"$set": bson.M{"ciStatus": status, "musicalParams": params}},
	)
	if err != nil {
		return fmt.Errorf("failed to update ci status of %s: %w", commitID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s@%s", ErrCommitNotFound, repoID, commitID)
	}
	return nil
}

func (m *Mongo) RecentCommits(ctx context.Context, repoID string, limit int) ([]models.Commit, error) {
	if repoID == "" {
		return nil, fmt.Errorf("%w: repo id cannot be empty", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := m.commits.Find(ctx, bson.M{"repoId": repoID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits of %s: %w", repoID, err)
	}

	var commits []models.Commit
	if err := cursor.All(ctx, &commits); err != nil {
		return nil, fmt.Errorf("failed to decode commits of %s: %w", repoID, err)
	}
	return commits, nil
}

func (m *Mongo) GetRepoByFullName(ctx context.Context, fullName string) (*models.Repository, error) {
	if fullName == "" {
		return nil, fmt.Errorf("%w: repository full name cannot be empty", ErrInvalidInput)
	}

	var repo models.Repository
	err := m.repos.FindOne(ctx, bson.M{"fullName": fullName}).Decode(&repo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, fullName)
		}
		return nil, fmt.Errorf("failed to get repository %s: %w", fullName, err)
	}
	return &repo, nil
}

func (m *Mongo) CreateRepo(ctx context.Context, repo *models.Repository) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	now := time.Now().UTC()
	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = now
	}
	repo.UpdatedAt = now

	if _, err := m.repos.InsertOne(ctx, repo); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: repository %s", ErrDuplicate, repo.FullName)
		}
		return fmt.Errorf("failed to store repository: %w", err)
	}
	return nil
}

func (m *Mongo) UpdateRepo(ctx context.Context, repo *models.Repository) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	repo.UpdatedAt = time.Now().UTC()
	res, err := m.repos.UpdateOne(ctx,
		bson.M{"fullName": repo.FullName},
		bson.M{"$set": bson.M{
			"owner":         repo.Owner,
			"name":          repo.Name,
			"webhookSecret": repo.WebhookSecret,
			"webhookId":     repo.WebhookID,
			"updatedAt":     repo.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update repository: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrRepositoryNotFound, repo.FullName)
	}
	return nil
}

func (m *Mongo) GetListener(ctx context.Context, username string) (*models.Listener, error) {
	var l models.Listener
	err := m.listeners.FindOne(ctx, bson.M{"username": username}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrListenerNotFound, username)
		}
		return nil, fmt.Errorf("failed to get listener %s: %w", username, err)
	}
	return &l, nil
}

func (m *Mongo) CreateListener(ctx context.Context, listener *models.Listener) error {
	if listener == nil || listener.Username == "" || listener.Password == "" {
		return fmt.Errorf("%w: listener needs a username and password hash", ErrInvalidInput)
	}
	if listener.CreatedAt.IsZero() {
		listener.CreatedAt = time.Now().UTC()
	}

	if _, err := m.listeners.InsertOne(ctx, listener); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: listener %s", ErrDuplicate, listener.Username)
		}
		return fmt.Errorf("failed to store listener: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the db package.
func (m *Mongo) Close(context.Context) error {
	return nil
}
