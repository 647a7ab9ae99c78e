package db

import (
	"context"

	"github.com/brightlux/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Stores bundles one store per collection.
type Stores struct {
	Users           Store[models.User]
	Credentials     Store[models.Credential]
	Carts           Store[models.Cart]
	Products        Store[models.Product]
	Blogs           Store[models.Blog]
	Services        Store[models.Service]
	Teams           Store[models.TeamMember]
	Testimonials    Store[models.Testimonial]
	Offers          Store[models.Offer]
	OffersBanner    Store[models.OfferBanner]
	Jobs            Store[models.Job]
	JobApplications Store[models.JobApplication]
	Leads           Store[models.Lead]
	Orders          Store[models.Order]

	// Ping reports whether the backing database is reachable.
	Ping func(ctx context.Context) error
}

// NewMongoStores binds every store to its collection in database.
func NewMongoStores(database *mongo.Database) Stores {
	return Stores{
		Users:           NewMongoStore[models.User](database, CollUsers),
		Credentials:     NewMongoStore[models.Credential](database, CollCredentials),
		Carts:           NewMongoStore[models.Cart](database, CollCarts),
		Products:        NewMongoStore[models.Product](database, CollProducts),
		Blogs:           NewMongoStore[models.Blog](database, CollBlogs),
		Services:        NewMongoStore[models.Service](database, CollServices),
		Teams:           NewMongoStore[models.TeamMember](database, CollTeams),
		Testimonials:    NewMongoStore[models.Testimonial](database, CollTestimonials),
		Offers:          NewMongoStore[models.Offer](database, CollOffers),
		OffersBanner:    NewMongoStore[models.OfferBanner](database, CollOffersBanner),
		Jobs:            NewMongoStore[models.Job](database, CollJobs),
		JobApplications: NewMongoStore[models.JobApplication](database, CollJobApplications),
		Leads:           NewMongoStore[models.Lead](database, CollLeads),
		Orders:          NewMongoStore[models.Order](database, CollOrders),
		Ping: func(ctx context.Context) error {
			return database.Client().Ping(ctx, readpref.Primary())
		},
	}
}

// NewMemoryStores returns empty in-process stores with the same uniqueness
// rules EnsureIndexes sets up in MongoDB.
func NewMemoryStores() Stores {
	return Stores{
		Users:           NewMemoryStore[models.User]("email"),
		Credentials:     NewMemoryStore[models.Credential]("email"),
		Carts:           NewMemoryStore[models.Cart](),
		Products:        NewMemoryStore[models.Product](),
		Blogs:           NewMemoryStore[models.Blog](),
		Services:        NewMemoryStore[models.Service](),
		Teams:           NewMemoryStore[models.TeamMember](),
		Testimonials:    NewMemoryStore[models.Testimonial](),
		Offers:          NewMemoryStore[models.Offer](),
		OffersBanner:    NewMemoryStore[models.OfferBanner](),
		Jobs:            NewMemoryStore[models.Job](),
		JobApplications: NewMemoryStore[models.JobApplication](),
		Leads:           NewMemoryStore[models.Lead](),
		Orders:          NewMemoryStore[models.Order](),
		Ping:            func(context.Context) error { return nil },
	}
}
