// Package handlers exposes the storefront over HTTP.
package handlers

import (
	"context"
	"net/http"
	"os"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/media"
	"github.com/brightlux/storefront-backend/internal/models"
	"github.com/brightlux/storefront-backend/internal/obs"
	"github.com/brightlux/storefront-backend/internal/services"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Deps is everything the router needs.
type Deps struct {
	Services       *services.Services
	Sessions       *auth.Sessions
	Uploader       *media.Uploader
	Logger         logging.Logger
	Ping           func(ctx context.Context) error
	CookieName     string
	MaxUploadBytes int64
	// WebDir is served at /. Empty disables the presentation layer.
	WebDir string
	// UploadsDir is served at /uploads/ for disk-backed media.
	UploadsDir     string
	TracerProvider trace.TracerProvider
}

func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = logging.Nop()
	}
	tp := d.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	sessions := &sessionReader{sessions: d.Sessions, cookie: d.CookieName}
	svc := d.Services

	router := mux.NewRouter()
	router.Use(recoverer(log), requestLogger(log), obs.Middleware(tp), sessions.Middleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(r.Context()); err != nil {
				log.Warn(r.Context(), "health check failed", "error", err)
				writeFail(w, http.StatusServiceUnavailable, CodeUnavailable, "database unreachable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	authH := NewAuthHandler(svc.Users, d.Sessions, d.CookieName, log)
	api.HandleFunc("/auth", authH.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth", authH.Register).Methods(http.MethodPut)
	api.HandleFunc("/auth", authH.Patch).Methods(http.MethodPatch)
	api.HandleFunc("/auth", authH.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/auth", authH.Get).Methods(http.MethodGet)
	api.HandleFunc("/auth/logout", authH.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/session", authH.Me).Methods(http.MethodGet)
	api.HandleFunc("/auth/{id}", authH.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/auth/{id}", authH.Update).Methods(http.MethodPut)
	api.HandleFunc("/auth/{id}", authH.DeleteByID).Methods(http.MethodDelete)

	cartH := NewCartHandler(svc.Carts, log)
	api.HandleFunc("/cart/{userId}", cartH.Get).Methods(http.MethodGet)
	api.HandleFunc("/cart/{userId}", cartH.Save).Methods(http.MethodPost)
	api.HandleFunc("/cart/{userId}", cartH.Add).Methods(http.MethodPatch)
	api.HandleFunc("/cart/{userId}", cartH.UpdateQuantity).Methods(http.MethodPut)
	api.HandleFunc("/cart/{userId}", cartH.Delete).Methods(http.MethodDelete)

	base := func() routeBase { return routeBase{log: log, uploader: d.Uploader, maxBytes: d.MaxUploadBytes} }

	// Catalog: public reads, admin writes.
	mount(api, "/products", catalog, newResource(base(), svc.Products,
		many("images", media.FolderProducts, func(p *models.Product) *[]string { return &p.Images })))
	mount(api, "/blogs", catalog, newResource(base(), svc.Blogs,
		single("image", media.FolderBlogs, func(b *models.Blog) *string { return &b.Image })))
	mount(api, "/services", catalog, newResource(base(), svc.Services,
		single("image", media.FolderServices, func(s *models.Service) *string { return &s.Image })))
	mount(api, "/teams", catalog, newResource(base(), svc.Teams,
		single("image", media.FolderTeams, func(m *models.TeamMember) *string { return &m.Image })))
	mount(api, "/offersBanner", catalog, newResource(base(), svc.OffersBanner,
		single("image", media.FolderOffersBanner, func(b *models.OfferBanner) *string { return &b.Image })))
	mount(api, "/testimonials", catalog, newResource[models.Testimonial](base(), svc.Testimonials, nil))
	mount(api, "/offers", catalog, newResource[models.Offer](base(), svc.Offers, nil))

	appsH := &JobApplicationHandler{apps: svc.Applications, log: log}
	api.Handle("/jobs/{id}/applications", adminOnly(log, appsH.ListByJob)).Methods(http.MethodGet)
	mount(api, "/jobs", catalog, newResource[models.Job](base(), svc.Jobs, nil))

	// Submissions: anyone may create, only admins read them back.
	apps := newResource(base(), svc.Applications.ContentService,
		single("resume", media.FolderResumes, func(a *models.JobApplication) *string { return &a.Resume }))
	apps.create = svc.Applications.Apply
	mount(api, "/job-applications", submissions, apps)

	leads := newResource[models.Lead](base(), svc.Leads.ContentService, nil)
	leads.create = svc.Leads.Submit
	mount(api, "/leads", submissions, leads)

	ordersH := &OrderHandler{orders: svc.Orders, log: log}
	api.Handle("/orders/{id}/status", adminOnly(log, ordersH.UpdateStatus)).Methods(http.MethodPatch)
	api.Handle("/orders/{id}", requireRole(log, ordersH.Get)).Methods(http.MethodGet)
	orders := newResource[models.Order](base(), svc.Orders.ContentService, nil)
	orders.create = ordersH.place
	mount(api, "/orders", submissions, orders)

	if d.UploadsDir != "" {
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir))))
	}
	if d.WebDir != "" {
		if _, err := os.Stat(d.WebDir); err == nil {
			router.PathPrefix("/").MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
				return !under(r.URL.Path, "/api")
			}).Handler(pageGate(http.FileServer(http.Dir(d.WebDir))))
		} else {
			log.Warn(context.Background(), "web directory not found, presentation layer disabled", "dir", d.WebDir)
		}
	}

	return router
}

// access says who may call each operation of a resource.
type access int

const (
	catalog     access = iota // public reads, admin writes
	submissions               // public create, admin everything else
)

type routeBase struct {
	log      logging.Logger
	uploader *media.Uploader
	maxBytes int64
}

func newResource[T any, P db.Doc[T]](b routeBase, svc *services.ContentService[T, P], files *attachment[T]) *resource[T, P] {
	return &resource[T, P]{svc: svc, log: b.log, uploader: b.uploader, maxBytes: b.maxBytes, files: files}
}

func mount[T any, P db.Doc[T]](r *mux.Router, path string, a access, h *resource[T, P]) {
	public := func(f http.HandlerFunc) http.Handler { return f }
	admin := func(f http.HandlerFunc) http.Handler { return adminOnly(h.log, f) }

	read, create := public, admin
	if a == submissions {
		read, create = admin, public
	}

	r.Handle(path, read(h.List)).Methods(http.MethodGet)
	r.Handle(path, create(h.Create)).Methods(http.MethodPost)
	r.Handle(path+"/{id}", read(h.Get)).Methods(http.MethodGet)
	r.Handle(path+"/{id}", admin(h.Update)).Methods(http.MethodPut, http.MethodPatch)
	r.Handle(path+"/{id}", admin(h.Delete)).Methods(http.MethodDelete)
}
