package database

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var Users *mongo.Collection
var Content *mongo.Collection
var Chats *mongo.Collection
var PushSubs *mongo.Collection

func ConnectMongo() error {
	// Read MongoDB URI from environment variable
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.Println("MONGODB_URI not set, using default localhost")
		uri = "mongodb://127.0.0.1:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	// Ping MongoDB
	if err := Client.Ping(ctx, nil); err != nil {
		return err
	}

	db := Client.Database("amora")
	Users = db.Collection("users")
	Content = db.Collection("content")
	Chats = db.Collection("chats")
	PushSubs = db.Collection("push_subscriptions")

	if err := ensureIndexes(ctx); err != nil {
		return err
	}

	log.Println("Connected to MongoDB successfully")
	return nil
}

func ensureIndexes(ctx context.Context) error {
	_, err := Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
	})
	if err != nil {
		return err
	}

	_, err = Content.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = Chats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}},
	})
	return err
}

func DisconnectMongo() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
