package store

import (
	"context"
	"testing"
	"time"

	"commitsonic/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongo(mt *mtest.T) *Mongo {
	return NewMongo(mt.Coll, mt.Coll, mt.Coll)
}

func TestMongoCreateCommits(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upserts batch", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 0},
		))

		err := s.CreateCommits(context.Background(), []models.Commit{
			{ID: "a1", RepoID: "owner/repo", CIStatus: models.CIStatusUnknown},
			{ID: "a2", RepoID: "owner/repo", CIStatus: models.CIStatusUnknown},
		})
		require.NoError(t, err)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "update", started.CommandName)
	})

	mt.Run("empty batch skips the server", func(mt *mtest.T) {
		s := newMockMongo(mt)
		require.NoError(t, s.CreateCommits(context.Background(), nil))
		assert.Nil(t, mt.GetStartedEvent())
	})

	mt.Run("rejects commit without id", func(mt *mtest.T) {
		s := newMockMongo(mt)
		err := s.CreateCommits(context.Background(), []models.Commit{{RepoID: "owner/repo"}})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestMongoGetRepoByFullName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "commitsonic.repositories", mtest.FirstBatch, bson.D{
			{Key: "fullName", Value: "owner/repo"},
			{Key: "owner", Value: "owner"},
			{Key: "name", Value: "repo"},
			{Key: "webhookSecret", Value: "s3cret"},
			{Key: "webhookId", Value: int64(42)},
		}))

		repo, err := s.GetRepoByFullName(context.Background(), "owner/repo")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", repo.WebhookSecret)
		assert.Equal(t, int64(42), repo.WebhookID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "commitsonic.repositories", mtest.FirstBatch))

		_, err := s.GetRepoByFullName(context.Background(), "owner/missing")
		assert.ErrorIs(t, err, ErrRepositoryNotFound)
	})
}

func TestMongoCreateRepoDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := s.CreateRepo(context.Background(), &models.Repository{FullName: "owner/repo"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	mt.Run("stamps times", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := &models.Repository{FullName: "owner/repo", Owner: "owner", Name: "repo"}
		require.NoError(t, s.CreateRepo(context.Background(), repo))
		assert.False(t, repo.CreatedAt.IsZero())
		assert.WithinDuration(t, time.Now(), repo.UpdatedAt, time.Minute)
	})
}

func TestMongoUpdateCIStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := s.UpdateCIStatus(context.Background(), "owner/repo", "a1", models.CIStatusPass, models.MusicalParams{Scale: models.ScaleMajor})
		require.NoError(t, err)
	})

	mt.Run("no match", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := s.UpdateCIStatus(context.Background(), "owner/repo", "zz", models.CIStatusFail, models.MusicalParams{})
		assert.ErrorIs(t, err, ErrCommitNotFound)
	})
}

func TestMongoGetListener(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "commitsonic.listeners", mtest.FirstBatch, bson.D{
			{Key: "username", Value: "ada"},
			{Key: "password", Value: "$2a$04$hash"},
		}))

		l, err := s.GetListener(context.Background(), "ada")
		require.NoError(t, err)
		assert.Equal(t, "$2a$04$hash", l.Password)
	})

	mt.Run("missing", func(mt *mtest.T) {
		s := newMockMongo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "commitsonic.listeners", mtest.FirstBatch))

		_, err := s.GetListener(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrListenerNotFound)
	})
}
