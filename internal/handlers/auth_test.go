package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brightlux/storefront-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func registerUser(t *testing.T, e *testEnv, email string) sessionView {
	t.Helper()
	_, env := e.do(t, http.MethodPut, "/api/auth", map[string]string{
		"email": email, "password": "secret123", "displayName": "Ada",
	})
	require.Equal(t, http.StatusCreated, env.StatusCode, env.ErrorMessage)
	return decode[sessionView](t, env.Data)
}

func TestAuth_DeleteWithoutUID(t *testing.T) {
	e := newTestEnv(t)

	_, env := e.do(t, http.MethodDelete, "/api/auth", nil)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.Equal(t, CodeInvalidInput, env.ErrorCode)
	assert.Equal(t, "uid is required", env.ErrorMessage)

	_, env = e.do(t, http.MethodDelete, "/api/auth", map[string]string{})
	assert.Equal(t, CodeInvalidInput, env.ErrorCode)
}

func TestAuth_RegisterLoginSession(t *testing.T) {
	e := newTestEnv(t)

	reg := registerUser(t, e, "ada@example.com")
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.NotEmpty(t, reg.Token)

	rec, env := e.do(t, http.MethodPost, "/api/auth", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, env.StatusCode)
	login := decode[sessionView](t, env.Data)
	assert.Equal(t, reg.User.ID, login.User.ID)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, login.Token, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	rec = e.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), reg.User.ID)

	_, env = e.do(t, http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, CodeUnauthorized, env.ErrorCode)

	_, env = e.do(t, http.MethodGet, "/api/auth/session", nil, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
}

func TestAuth_LoginFailures(t *testing.T) {
	e := newTestEnv(t)
	registerUser(t, e, "ada@example.com")

	_, env := e.do(t, http.MethodPost, "/api/auth", map[string]string{
		"email": "ada@example.com", "password": "wrong-one",
	})
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.Equal(t, CodeIncorrectPassword, env.ErrorCode)
	assert.Equal(t, "Incorrect password", env.ErrorMessage)

	_, env = e.do(t, http.MethodPost, "/api/auth", map[string]string{
		"email": "ghost@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.Equal(t, CodeUserNotFound, env.ErrorCode)
	assert.Equal(t, "User not found", env.ErrorMessage)

	_, env = e.do(t, http.MethodPost, "/api/auth", map[string]string{"email": "ada@example.com"})
	assert.Equal(t, CodeInvalidInput, env.ErrorCode)
}

func TestAuth_RegisterConflictsAndAdmin(t *testing.T) {
	e := newTestEnv(t)
	registerUser(t, e, "ada@example.com")

	_, env := e.do(t, http.MethodPut, "/api/auth", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, env.StatusCode)
	assert.Equal(t, CodeEmailExists, env.ErrorCode)

	_, env = e.do(t, http.MethodPut, "/api/auth", map[string]string{
		"email": "bob@example.com", "password": "123",
	})
	assert.Equal(t, CodeInvalidInput, env.ErrorCode)

	admin := registerUser(t, e, testAdmin)
	assert.Equal(t, models.RoleAdmin, admin.User.Role)
}

func TestAuth_GetAndList(t *testing.T) {
	e := newTestEnv(t)
	ada := registerUser(t, e, "ada@example.com")
	self := bearer(ada.Token)
	admin := bearer(e.token(t, "admin", models.RoleAdmin))

	_, env := e.do(t, http.MethodGet, "/api/auth?uid="+ada.User.ID, nil, self)
	require.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, ada.User.ID, decode[models.User](t, env.Data).ID)

	_, env = e.do(t, http.MethodGet, "/api/auth?email=ADA@example.com", nil, self)
	require.Equal(t, http.StatusOK, env.StatusCode)

	_, env = e.do(t, http.MethodGet, "/api/auth/"+ada.User.ID, nil, self)
	require.Equal(t, http.StatusOK, env.StatusCode)

	_, env = e.do(t, http.MethodGet, "/api/auth/nope", nil, admin)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, CodeUserNotFound, env.ErrorCode)

	_, env = e.do(t, http.MethodGet, "/api/auth", nil)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	_, env = e.do(t, http.MethodGet, "/api/auth", nil, self)
	assert.Equal(t, http.StatusForbidden, env.StatusCode)
	_, env = e.do(t, http.MethodGet, "/api/auth", nil, admin)
	require.Equal(t, http.StatusOK, env.StatusCode)
	assert.Len(t, decode[[]models.User](t, env.Data), 1)
}

func TestAuth_AccountRoutesNeedOwnerOrAdmin(t *testing.T) {
	e := newTestEnv(t)
	owner := registerUser(t, e, testAdmin)
	ada := registerUser(t, e, "ada@example.com")
	bob := bearer(registerUser(t, e, "bob@example.com").Token)
	target := ada.User.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"lookup by email", http.MethodGet, "/api/auth?email=ada@example.com", nil},
		{"lookup by uid", http.MethodGet, "/api/auth?uid=" + target, nil},
		{"get by id", http.MethodGet, "/api/auth/" + target, nil},
		{"patch password", http.MethodPatch, "/api/auth", map[string]any{"uid": target, "password": "pwned123"}},
		{"merge cart", http.MethodPatch, "/api/auth", map[string]any{"uid": target, "cart": []map[string]any{{"id": "p1", "quantity": 1}}}},
		{"put", http.MethodPut, "/api/auth/" + target, map[string]any{"password": "pwned123"}},
		{"delete by query", http.MethodDelete, "/api/auth?uid=" + target, nil},
		{"delete by body", http.MethodDelete, "/api/auth", map[string]string{"uid": target}},
		{"delete by id", http.MethodDelete, "/api/auth/" + target, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := e.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
			assert.Equal(t, CodeUnauthorized, env.ErrorCode)

			_, env = e.do(t, tt.method, tt.path, tt.body, bob)
			assert.Equal(t, http.StatusForbidden, env.StatusCode)
			assert.Equal(t, CodeForbidden, env.ErrorCode)
		})
	}

	// Unknown emails look the same as other people's to non-admins.
	_, env := e.do(t, http.MethodGet, "/api/auth?email=ghost@example.com", nil, bob)
	assert.Equal(t, http.StatusForbidden, env.StatusCode)
	_, env = e.do(t, http.MethodGet, "/api/auth?email=ghost@example.com", nil, bearer(owner.Token))
	assert.Equal(t, http.StatusNotFound, env.StatusCode)

	// Nothing above touched the account: the old password still works and
	// the admin can still reach it.
	_, env = e.do(t, http.MethodPost, "/api/auth", map[string]string{"email": "ada@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, env.StatusCode)
	_, env = e.do(t, http.MethodPost, "/api/auth", map[string]string{"email": "ada@example.com", "password": "pwned123"})
	assert.Equal(t, CodeIncorrectPassword, env.ErrorCode)
	_, env = e.do(t, http.MethodGet, "/api/auth?email=ada@example.com", nil, bearer(owner.Token))
	require.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, target, decode[models.User](t, env.Data).ID)
}

func TestAuth_PatchProfileAndCartMerge(t *testing.T) {
	e := newTestEnv(t)
	ada := registerUser(t, e, "ada@example.com")
	self := bearer(ada.Token)

	_, env := e.do(t, http.MethodPatch, "/api/auth", map[string]any{
		"uid": ada.User.ID, "displayName": "Ada L.", "phoneNumber": "+15550100",
	}, self)
	require.Equal(t, http.StatusOK, env.StatusCode, env.ErrorMessage)
	u := decode[models.User](t, env.Data)
	assert.Equal(t, "Ada L.", u.DisplayName)
	assert.Equal(t, "+15550100", u.PhoneNumber)

	e.do(t, http.MethodPatch, "/api/cart/"+ada.User.ID, map[string]any{"id": "p1", "quantity": 1})
	_, env = e.do(t, http.MethodPatch, "/api/auth", map[string]any{
		"uid":  ada.User.ID,
		"cart": []map[string]any{{"id": "p1", "quantity": 2}, {"id": "p2", "quantity": 1}},
	}, self)
	require.Equal(t, http.StatusOK, env.StatusCode, env.ErrorMessage)
	items := decode[cartView](t, env.Data).Items
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)

	_, env = e.do(t, http.MethodPatch, "/api/auth", map[string]any{"displayName": "x"})
	assert.Equal(t, CodeInvalidInput, env.ErrorCode)

	_, env = e.do(t, http.MethodPut, "/api/auth/"+ada.User.ID, map[string]any{"displayName": "Countess"}, self)
	require.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, "Countess", decode[models.User](t, env.Data).DisplayName)

	_, env = e.do(t, http.MethodPut, "/api/auth/"+ada.User.ID, map[string]any{"displayName": "Admin edit"},
		bearer(e.token(t, "admin", models.RoleAdmin)))
	require.Equal(t, http.StatusOK, env.StatusCode)
}

func TestAuth_Delete(t *testing.T) {
	e := newTestEnv(t)
	ada := registerUser(t, e, "ada@example.com")
	bob := registerUser(t, e, "bob@example.com")
	admin := bearer(e.token(t, "admin", models.RoleAdmin))

	_, env := e.do(t, http.MethodDelete, "/api/auth?uid="+ada.User.ID, nil, bearer(ada.Token))
	require.Equal(t, http.StatusOK, env.StatusCode)

	_, env = e.do(t, http.MethodDelete, "/api/auth", map[string]string{"uid": bob.User.ID}, admin)
	require.Equal(t, http.StatusOK, env.StatusCode)

	_, env = e.do(t, http.MethodDelete, "/api/auth/"+bob.User.ID, nil, admin)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, CodeUserNotFound, env.ErrorCode)
}

func TestAuth_Logout(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, env.StatusCode)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
