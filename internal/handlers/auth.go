package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
	"github.com/brightlux/storefront-backend/internal/services"
	"github.com/gorilla/mux"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Sessions
	cookie   string
	log      logging.Logger
}

func NewAuthHandler(users *services.UserService, sessions *auth.Sessions, cookie string, log logging.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, cookie: cookie, log: log}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// profilePatch is the PATCH /auth body: a profile update, or a cart merge
// when cart is present.
type profilePatch struct {
	UID  string             `json:"uid"`
	Cart *[]models.CartItem `json:"cart,omitempty"`
	services.ProfileUpdate
}

type sessionView struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, u *models.User) (string, error) {
	token, err := h.sessions.Issue(auth.Session{UserID: u.ID, Role: u.Role, Email: u.Email})
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Login handles POST /auth.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := services.Validate(&in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeFail(w, http.StatusUnauthorized, CodeUserNotFound, auth.ErrUserNotFound.Error())
			return
		}
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.startSession(w, r, user)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{User: user, Token: token})
}

// Register handles PUT /auth.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg services.Registration
	if err := decodeJSON(w, r, &reg, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, err := h.users.Register(r.Context(), reg)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.startSession(w, r, user)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionView{User: user, Token: token})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: h.cookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeJSON(w, http.StatusOK, nil)
}

// Patch handles PATCH /auth.
func (h *AuthHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var in profilePatch
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if in.UID == "" {
		writeError(w, r, h.log, invalid("uid is required"))
		return
	}
	if err := authorize(r, in.UID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if in.Cart != nil {
		items, err := h.users.MergeCart(r.Context(), in.UID, *in.Cart)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, cartView{UserID: in.UID, Items: items})
		return
	}
	h.update(w, r, in.UID, in.ProfileUpdate)
}

// Update handles PUT /auth/{id}.
func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["id"]
	if err := authorize(r, uid); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var upd services.ProfileUpdate
	if err := decodeJSON(w, r, &upd, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.update(w, r, uid, upd)
}

func (h *AuthHandler) update(w http.ResponseWriter, r *http.Request, uid string, upd services.ProfileUpdate) {
	user, err := h.users.UpdateProfile(r.Context(), uid, upd)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /auth, with uid in the query or the body.
func (h *AuthHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		var in struct {
			UID string `json:"uid"`
		}
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &in); err != nil {
				writeError(w, r, h.log, invalid("malformed JSON: %v", err))
				return
			}
		}
		uid = in.UID
	}
	if uid == "" {
		writeError(w, r, h.log, invalid("uid is required"))
		return
	}
	h.delete(w, r, uid)
}

// DeleteByID handles DELETE /auth/{id}.
func (h *AuthHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, mux.Vars(r)["id"])
}

func (h *AuthHandler) delete(w http.ResponseWriter, r *http.Request, uid string) {
	if err := authorize(r, uid); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.users.Delete(r.Context(), uid); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uid": uid})
}

// Get handles GET /auth: one user by uid or email, otherwise every user.
// Callers only see their own account unless they are an admin.
func (h *AuthHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("uid") != "":
		h.get(w, r, q.Get("uid"))
	case q.Get("email") != "":
		h.getByEmail(w, r, q.Get("email"))
	default:
		adminOnly(h.log, h.list).ServeHTTP(w, r)
	}
}

func (h *AuthHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) getByEmail(w http.ResponseWriter, r *http.Request, email string) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, h.log, errUnauthorized)
		return
	}
	user, err := h.users.GetByEmail(r.Context(), email)
	if sess.Role != models.RoleAdmin {
		// Non-admins only ever learn about their own account.
		if errors.Is(err, auth.ErrUserNotFound) || (err == nil && user.ID != sess.UserID) {
			err = errForbidden
		}
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetByID handles GET /auth/{id}.
func (h *AuthHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, mux.Vars(r)["id"])
}

func (h *AuthHandler) get(w http.ResponseWriter, r *http.Request, uid string) {
	if err := authorize(r, uid); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.users.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Me handles GET /auth/session: the profile behind the caller's token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, h.log, errUnauthorized)
		return
	}
	h.get(w, r, sess.UserID)
}

// authorize lets the caller act on account uid when it is their own or they
// are an admin.
func authorize(r *http.Request, uid string) error {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		return errUnauthorized
	}
	if sess.UserID != uid && sess.Role != models.RoleAdmin {
		return errForbidden
	}
	return nil
}
