package handlers

import (
	"net/http"

	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
	"github.com/brightlux/storefront-backend/internal/services"
	"github.com/gorilla/mux"
)

type CartHandler struct {
	carts *services.CartService
	log   logging.Logger
}

func NewCartHandler(carts *services.CartService, log logging.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

type cartView struct {
	UserID string            `json:"userId"`
	Items  []models.CartItem `json:"items"`
}

type quantityUpdate struct {
	ItemID   string `json:"itemId"`
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) reply(w http.ResponseWriter, r *http.Request, userID string, items []models.CartItem, err error) {
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView{UserID: userID, Items: items})
}

// Get handles GET /cart/{userId}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	items, err := h.carts.Get(r.Context(), userID)
	h.reply(w, r, userID, items, err)
}

// Save handles POST /cart/{userId}: overwrite with {items}.
func (h *CartHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var in struct {
		Items []models.CartItem `json:"items"`
	}
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	items, err := h.carts.Save(r.Context(), userID, in.Items)
	h.reply(w, r, userID, items, err)
}

// Add handles PATCH /cart/{userId}: add one item or merge it into its line.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var item models.CartItem
	if err := decodeJSON(w, r, &item, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	items, err := h.carts.AddOrMerge(r.Context(), userID, item)
	h.reply(w, r, userID, items, err)
}

// UpdateQuantity handles PUT /cart/{userId} with {itemId, quantity}.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var in quantityUpdate
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	itemID := in.ItemID
	if itemID == "" {
		itemID = in.ID
	}
	if itemID == "" {
		writeError(w, r, h.log, invalid("itemId is required"))
		return
	}
	items, err := h.carts.UpdateQuantity(r.Context(), userID, itemID, in.Quantity)
	h.reply(w, r, userID, items, err)
}

// Delete handles DELETE /cart/{userId}. With an itemId (query or body) only
// that line goes; without one the whole cart is cleared.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	itemID := r.URL.Query().Get("itemId")
	if itemID == "" {
		var in quantityUpdate
		if err := decodeJSON(w, r, &in, true); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		itemID = in.ItemID
		if itemID == "" {
			itemID = in.ID
		}
	}

	if itemID != "" {
		items, err := h.carts.Remove(r.Context(), userID, itemID)
		h.reply(w, r, userID, items, err)
		return
	}
	err := h.carts.Clear(r.Context(), userID)
	h.reply(w, r, userID, []models.CartItem{}, err)
}
