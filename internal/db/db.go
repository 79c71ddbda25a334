package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Ctx = context.Background()
var RDB *redis.Client
var Client *mongo.Client

var Commits *mongo.Collection
var Repositories *mongo.Collection
var Listeners *mongo.Collection
var Events *mongo.Collection

func InitDB(uri string, database string) error {
	var err error

	ctx, cancel := context.WithTimeout(Ctx, 10*time.Second)
	defer cancel()

	Client, err = mongo.Connect(
		ctx,
		options.Client().ApplyURI(uri),
	)
	if err != nil {
		return err
	}

	err = Client.Ping(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not connect to mongodb: %w", err)
	}

	// loading collections
	Commits = GetCollection(database, "commits", Client)
	Repositories = GetCollection(database, "repositories", Client)
	Listeners = GetCollection(database, "listeners", Client)
	Events = GetCollection(database, "events", Client)

	return nil
}

func GetCollection(database string, collectionName string, client *mongo.Client) *mongo.Collection {
	return client.Database(database).Collection(collectionName)
}

func CloseDB(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

func InitCache(addr string, password string, database int) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	if err := RDB.Ping(Ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to redis: %w", err)
	}

	return nil
}

func CloseCache() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}
