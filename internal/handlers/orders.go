package handlers

import (
	"context"
	"net/http"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
	"github.com/brightlux/storefront-backend/internal/services"
	"github.com/gorilla/mux"
)

type OrderHandler struct {
	orders *services.OrderService
	log    logging.Logger
}

// place stores an order for the signed-in caller. Anonymous orders have no
// owner; the body never decides whose order it is.
func (h *OrderHandler) place(ctx context.Context, o *models.Order) (*models.Order, error) {
	o.UserID = ""
	if sess, ok := auth.FromContext(ctx); ok {
		o.UserID = sess.UserID
	}
	return h.orders.Place(ctx, o)
}

// Get handles GET /orders/{id}. Customers only see their own orders.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	sess, _ := auth.FromContext(r.Context())
	if sess.Role != models.RoleAdmin && sess.UserID != order.UserID {
		writeError(w, r, h.log, errForbidden)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], in.Status)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type JobApplicationHandler struct {
	apps *services.JobApplicationService
	log  logging.Logger
}

// ListByJob handles GET /jobs/{id}/applications.
func (h *JobApplicationHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	apps, err := h.apps.ListByJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
