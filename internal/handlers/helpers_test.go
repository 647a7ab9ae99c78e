package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/media"
	"github.com/brightlux/storefront-backend/internal/services"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/crypto/bcrypt"
)

const (
	testCookie    = "session"
	testUploadURL = "http://test/uploads"
	testAdmin     = "owner@brightlux.test"

	pngMagic  = "\x89PNG\r\n\x1a\n"
	jpegMagic = "\xff\xd8\xff\xe0"
)

type testEnv struct {
	router    http.Handler
	stores    db.Stores
	svc       *services.Services
	sessions  *auth.Sessions
	uploadDir string
	webDir    string
}

// newTestEnv wires the router over memory stores. wrap lets a test swap in
// misbehaving stores before the services are built.
func newTestEnv(t *testing.T, wrap ...func(*db.Stores)) *testEnv {
	t.Helper()
	st := db.NewMemoryStores()
	for _, w := range wrap {
		w(&st)
	}
	log := logging.Nop()
	svc := services.New(st, services.Options{
		Provider:   auth.NewLocalProvider(st.Credentials, auth.WithCost(bcrypt.MinCost)),
		Logger:     log,
		AdminEmail: testAdmin,
	})

	uploadDir := t.TempDir()
	disk, err := media.NewDiskStore(uploadDir, testUploadURL)
	require.NoError(t, err)

	webDir := t.TempDir()
	for _, page := range []string{"index.html", "profile/index.html", "dashboard/index.html", "login/index.html"} {
		p := filepath.Join(webDir, filepath.FromSlash(page))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("<html>"+page+"</html>"), 0o644))
	}

	sessions := auth.NewSessions("test-secret", time.Hour)
	router := NewRouter(Deps{
		Services:       svc,
		Sessions:       sessions,
		Uploader:       media.NewUploader(disk, log, 1<<20),
		Logger:         log,
		CookieName:     testCookie,
		MaxUploadBytes: 2 << 20,
		WebDir:         webDir,
		UploadsDir:     uploadDir,
		TracerProvider: noop.NewTracerProvider(),
	})
	return &testEnv{router: router, stores: st, svc: svc, sessions: sessions, uploadDir: uploadDir, webDir: webDir}
}

func (e *testEnv) token(t *testing.T, uid, role string) string {
	t.Helper()
	tok, err := e.sessions.Issue(auth.Session{UserID: uid, Role: role, Email: uid + "@example.com"})
	require.NoError(t, err)
	return tok
}

// objectExists reports whether the disk store holds the object behind url.
func (e *testEnv) objectExists(url string) bool {
	key, ok := strings.CutPrefix(url, testUploadURL+"/")
	if !ok {
		return false
	}
	_, err := os.Stat(filepath.Join(e.uploadDir, filepath.FromSlash(key)))
	return err == nil
}

type response struct {
	StatusCode   int             `json:"statusCode"`
	ErrorCode    string          `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
	Data         json.RawMessage `json:"data"`
}

type reqOpt func(*http.Request)

func bearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func (e *testEnv) serve(req *http.Request, opts ...reqOpt) *httptest.ResponseRecorder {
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// do sends body as JSON (nil sends no body) and decodes the envelope.
func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := e.serve(req, opts...)

	var env response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.Equal(t, rec.Code, env.StatusCode)
	return rec, env
}

type upload struct {
	field, name, content string
}

func (e *testEnv) multipart(t *testing.T, method, path string, fields map[string]string, files []upload, opts ...reqOpt) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := e.serve(req, opts...)

	var env response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}
