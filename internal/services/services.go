package services

import (
	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/events"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Users        *UserService
	Carts        *CartService
	Products     *ContentService[models.Product, *models.Product]
	Blogs        *ContentService[models.Blog, *models.Blog]
	Services     *ContentService[models.Service, *models.Service]
	Teams        *ContentService[models.TeamMember, *models.TeamMember]
	Testimonials *ContentService[models.Testimonial, *models.Testimonial]
	Offers       *ContentService[models.Offer, *models.Offer]
	OffersBanner *ContentService[models.OfferBanner, *models.OfferBanner]
	Jobs         *ContentService[models.Job, *models.Job]
	Applications *JobApplicationService
	Leads        *LeadService
	Orders       *OrderService
}

// Options configure New.
type Options struct {
	Provider   auth.Provider
	Publisher  events.Publisher
	Logger     logging.Logger
	AdminEmail string
}

func New(st db.Stores, opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	carts := NewCartService(st.Carts, log)
	return &Services{
		Users:        NewUserService(st.Users, opts.Provider, carts, opts.Publisher, log, opts.AdminEmail),
		Carts:        carts,
		Products:     NewContentService[models.Product]("product", st.Products),
		Blogs:        NewContentService[models.Blog]("blog", st.Blogs),
		Services:     NewContentService[models.Service]("service", st.Services),
		Teams:        NewContentService[models.TeamMember]("team member", st.Teams),
		Testimonials: NewContentService[models.Testimonial]("testimonial", st.Testimonials),
		Offers:       NewContentService[models.Offer]("offer", st.Offers),
		OffersBanner: NewContentService[models.OfferBanner]("offer banner", st.OffersBanner),
		Jobs:         NewContentService[models.Job]("job", st.Jobs),
		Applications: NewJobApplicationService(st.JobApplications, st.Jobs, opts.Publisher, log),
		Leads:        NewLeadService(st.Leads, opts.Publisher, log),
		Orders:       NewOrderService(st.Orders, carts, opts.Publisher, log),
	}
}
