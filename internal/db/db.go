package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	CollUsers           = "users"
	CollCredentials     = "credentials"
	CollCarts           = "carts"
	CollProducts        = "products"
	CollBlogs           = "blogs"
	CollServices        = "services"
	CollTeams           = "teams"
	CollTestimonials    = "testimonials"
	CollOffers          = "offers"
	CollOffersBanner    = "offersBanner"
	CollJobs            = "jobs"
	CollJobApplications = "jobApplications"
	CollLeads           = "leads"
	CollOrders          = "orders"
)

// Connect opens a client for uri and verifies it against the primary.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Disconnect closes the client (call in main defer).
func Disconnect(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	unique := []string{CollUsers, CollCredentials}
	for _, name := range unique {
		_, err := database.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("create email index on %s: %w", name, err)
		}
	}

	sorted := []string{
		CollProducts, CollBlogs, CollServices, CollTeams, CollTestimonials,
		CollOffers, CollOffersBanner, CollJobs, CollJobApplications, CollLeads, CollOrders,
	}
	for _, name := range sorted {
		_, err := database.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdOn", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("create createdOn index on %s: %w", name, err)
		}
	}

	_, err := database.Collection(CollJobApplications).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "jobId", Value: 1}, {Key: "createdOn", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create jobId index: %w", err)
	}
	return nil
}
