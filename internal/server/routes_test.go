// Package server tests drive the full route mux with the in-memory
// repository and session store.
package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"planets-api/internal/auth"
	"planets-api/internal/planet"
	"planets-api/internal/server"
	"planets-api/internal/shared/config"
	"planets-api/internal/shared/cookies"
	"planets-api/internal/upload"
)

// testLogger silences logs during handler tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type testApp struct {
	handler  http.Handler
	repo     *planet.MemoryRepository
	sessions *auth.Manager
	cfg      *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        "8080",
			Environment: "test",
		},
		Session: config.SessionConfig{
			Secret:         "test-session-secret-for-route-tests",
			TTL:            time.Hour,
			CookieName:     "session_token",
			CookieSameSite: "lax",
		},
		OAuth: config.OAuthConfig{
			GitHub: config.GitHubOAuthConfig{
				ClientID:     config.MissingEnvSentinel,
				ClientSecret: config.MissingEnvSentinel,
				CallbackURL:  config.MissingEnvSentinel,
			},
		},
		Frontend: config.FrontendConfig{URL: "http://localhost:8080"},
		Upload: config.UploadConfig{
			Dir:         t.TempDir(),
			MaxFileSize: 6 * 1024 * 1024,
		},
	}

	repo := planet.NewMemoryRepository()
	service := planet.NewService(repo, testLogger())

	signer := auth.NewTokenSigner(cfg.Session.Secret, cfg.Session.TTL)
	sessions := auth.NewManager(auth.NewMemoryStore(), signer, cfg.Session.TTL, testLogger())
	states := auth.NewStateManager()
	cookieManager := cookies.NewManager(cfg)
	guard := upload.NewGuard(cfg, testLogger())

	routes := server.NewRoutes(cfg, nil, nil, service, sessions, states, cookieManager, guard, testLogger())

	return &testApp{
		handler:  routes.Handler(),
		repo:     repo,
		sessions: sessions,
		cfg:      cfg,
	}
}

// login opens a session and returns the cookie to attach to requests.
func (app *testApp) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	token, err := app.sessions.Create(context.Background(), auth.Identity{
		Username: username,
		Provider: "github",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	return &http.Cookie{Name: app.cfg.Session.CookieName, Value: token}
}

func (app *testApp) do(t *testing.T, method, path string, body io.Reader, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(r)
	}

	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, r)
	return w
}

func withCookie(cookie *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

func withContentType(contentType string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Content-Type", contentType) }
}

func (app *testApp) seedPlanet(t *testing.T, name string, diameter int) *planet.Planet {
	t.Helper()

	p, err := app.repo.Create(context.Background(), planet.Data{Name: name, Diameter: diameter}, "seed", "seed")
	if err != nil {
		t.Fatalf("seed planet: %v", err)
	}
	return p
}

func decodePlanet(t *testing.T, body *bytes.Buffer) planet.Planet {
	t.Helper()

	var p planet.Planet
	if err := json.NewDecoder(body).Decode(&p); err != nil {
		t.Fatalf("decode planet: %v", err)
	}
	return p
}

type validationBody struct {
	Errors struct {
		Body []map[string]any `json:"body"`
	} `json:"errors"`
}

func decodeValidation(t *testing.T, body *bytes.Buffer) validationBody {
	t.Helper()

	var v validationBody
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		t.Fatalf("decode validation body: %v", err)
	}
	return v
}

func TestListPlanets_Empty(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "GET", "/planets", nil)

	if w.Code != 200 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %q", got)
	}
}

func TestListPlanets_CORSHeader(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "GET", "/planets", nil, func(r *http.Request) {
		r.Header.Set("Origin", "http://localhost:8080")
	})

	if w.Code != 200 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8080" {
		t.Fatalf("Access-Control-Allow-Origin=%q", got)
	}
}

func TestListPlanets_CORSHeaderWithoutOrigin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "GET", "/planets", nil)

	if w.Code != 200 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8080" {
		t.Fatalf("Access-Control-Allow-Origin=%q on Origin-less request", got)
	}
}

func TestGetPlanet_Found(t *testing.T) {
	app := newTestApp(t)
	seeded := app.seedPlanet(t, "Terra", 6000)

	w := app.do(t, "GET", fmt.Sprintf("/planets/%d", seeded.ID), nil)

	if w.Code != 200 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	p := decodePlanet(t, w.Body)
	if p.ID != seeded.ID || p.Name != "Terra" || p.Diameter != 6000 {
		t.Fatalf("unexpected planet: %+v", p)
	}
}

func TestGetPlanet_NotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "GET", "/planets/999999", nil)

	if w.Code != 404 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot GET /planets/999999") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestGetPlanet_NonNumericID(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "GET", "/planets/peppe", nil)

	if w.Code != 404 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot GET /planets/peppe") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestCreatePlanet_Unauthenticated(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "POST", "/planets", strings.NewReader(`{"name":"Terra","diameter":6000}`))

	if w.Code != 401 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCreatePlanet_Valid(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets",
		strings.NewReader(`{"name":"Pushed Planet","diameter":6000}`), withCookie(cookie))

	if w.Code != 201 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	p := decodePlanet(t, w.Body)
	if p.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", p)
	}
	if p.Name != "Pushed Planet" || p.Diameter != 6000 {
		t.Fatalf("unexpected planet: %+v", p)
	}
	if p.Description != nil {
		t.Fatalf("expected null description, got %q", *p.Description)
	}
	if p.CreatedBy != "astronaut" || p.UpdatedBy != "astronaut" {
		t.Fatalf("expected identity stamps, got %+v", p)
	}
}

func TestCreatePlanet_DescriptionNullOnWire(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets",
		strings.NewReader(`{"name":"Bare","diameter":100}`), withCookie(cookie))

	if w.Code != 201 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"description":null`) {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestCreatePlanet_NullDescription(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets",
		strings.NewReader(`{"name":"Nully","description":null,"diameter":10}`), withCookie(cookie))

	if w.Code != 201 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	p := decodePlanet(t, w.Body)
	if p.Description == nil || *p.Description != "" {
		t.Fatalf("null description should coerce to empty string, got %+v", p.Description)
	}
}

func TestCreatePlanet_EmptyBody(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets", strings.NewReader(""), withCookie(cookie))

	if w.Code != 422 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	v := decodeValidation(t, w.Body)
	if len(v.Errors.Body) != 2 {
		t.Fatalf("expected missing name and diameter violations, body=%q", w.Body.String())
	}
}

func TestCreatePlanet_MissingName(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets", strings.NewReader(`{"diameter":50000}`), withCookie(cookie))

	if w.Code != 422 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	v := decodeValidation(t, w.Body)
	if len(v.Errors.Body) == 0 {
		t.Fatalf("expected violations under errors.body, body=%q", w.Body.String())
	}
}

func TestCreatePlanet_UnknownField(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets",
		strings.NewReader(`{"name":"Terra","diameter":6000,"moons":2}`), withCookie(cookie))

	if w.Code != 422 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	v := decodeValidation(t, w.Body)
	if len(v.Errors.Body) == 0 {
		t.Fatalf("expected violations under errors.body, body=%q", w.Body.String())
	}
}

func TestCreatePlanet_MalformedJSON(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets", strings.NewReader(`{"name":`), withCookie(cookie))

	if w.Code != 400 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateThenGet_RoundTrip(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets",
		strings.NewReader(`{"name":"Gaia","description":"home","diameter":12742}`), withCookie(cookie))
	if w.Code != 201 {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	created := decodePlanet(t, w.Body)

	w = app.do(t, "GET", fmt.Sprintf("/planets/%d", created.ID), nil)
	if w.Code != 200 {
		t.Fatalf("get status=%d body=%s", w.Code, w.Body.String())
	}
	got := decodePlanet(t, w.Body)

	if got.Name != "Gaia" || got.Diameter != 12742 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Description == nil || *got.Description != "home" {
		t.Fatalf("round trip description mismatch: %+v", got.Description)
	}
}

func TestUpdatePlanet_Valid(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Terra", 6000)

	w := app.do(t, "PUT", fmt.Sprintf("/planets/%d", seeded.ID),
		strings.NewReader(`{"name":"Terra","description":"Gaia","diameter":1000}`), withCookie(cookie))

	if w.Code != 200 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	p := decodePlanet(t, w.Body)
	if p.Diameter != 1000 || p.UpdatedBy != "editor" {
		t.Fatalf("unexpected planet: %+v", p)
	}
}

func TestUpdatePlanet_NotFound(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")

	w := app.do(t, "PUT", "/planets/44",
		strings.NewReader(`{"name":"Edited","diameter":939}`), withCookie(cookie))

	if w.Code != 404 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot PUT /planets/44") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestUpdatePlanet_InvalidBody(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Terra", 6000)

	w := app.do(t, "PUT", fmt.Sprintf("/planets/%d", seeded.ID),
		strings.NewReader(`{"description":"Gaia","diameter":1000}`), withCookie(cookie))

	if w.Code != 422 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdatePlanet_NonNumericID(t *testing.T) {
	app := newTestApp(t)

	// No session either: pattern gating means the route never matches, so
	// the auth gate is never consulted.
	w := app.do(t, "PUT", "/planets/peppe",
		strings.NewReader(`{"name":"test edit","diameter":2292992}`))

	if w.Code != 404 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot PUT /planets/peppe") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestDeletePlanet_ThenAgain(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Doomed", 1)
	path := fmt.Sprintf("/planets/%d", seeded.ID)

	w := app.do(t, "DELETE", path, nil, withCookie(cookie))
	if w.Code != 204 {
		t.Fatalf("first delete status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}

	w = app.do(t, "DELETE", path, nil, withCookie(cookie))
	if w.Code != 404 {
		t.Fatalf("second delete status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot DELETE "+path) {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestDeletePlanet_Unauthenticated(t *testing.T) {
	app := newTestApp(t)
	seeded := app.seedPlanet(t, "Safe", 1)

	w := app.do(t, "DELETE", fmt.Sprintf("/planets/%d", seeded.ID), nil)

	if w.Code != 401 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUnmatchedRoute_Generic404(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "GET", "/nope", nil)

	if w.Code != 404 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot GET /nope") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

// multipartPhoto builds a multipart body with a single "photo" part carrying
// the given declared MIME type.
func multipartPhoto(t *testing.T, mimeType string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="photo.bin"`)
	header.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return &buf, mw.FormDataContentType()
}

func TestAttachPhoto_PNG(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Imaged", 10)

	body, contentType := multipartPhoto(t, "image/png", []byte("png-bytes"))
	w := app.do(t, "POST", fmt.Sprintf("/planets/%d/photo", seeded.ID), body,
		withCookie(cookie), withContentType(contentType))

	if w.Code != 201 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	filename := resp["photoFilename"]
	if !strings.HasSuffix(filename, ".png") {
		t.Fatalf("photoFilename=%q", filename)
	}

	// Bytes are on disk before the response went out
	if _, err := os.Stat(filepath.Join(app.cfg.Upload.Dir, filename)); err != nil {
		t.Fatalf("stored file: %v", err)
	}

	// And the record carries the filename
	stored, err := app.repo.GetByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("get planet: %v", err)
	}
	if stored.PhotoFilename == nil || *stored.PhotoFilename != filename {
		t.Fatalf("photoFilename not persisted: %+v", stored.PhotoFilename)
	}
}

func TestAttachPhoto_JPEGSuffix(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Imaged", 10)

	body, contentType := multipartPhoto(t, "image/jpeg", []byte("jpeg-bytes"))
	w := app.do(t, "POST", fmt.Sprintf("/planets/%d/photo", seeded.ID), body,
		withCookie(cookie), withContentType(contentType))

	if w.Code != 201 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), ".jpeg") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestAttachPhoto_WrongMIME(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Imaged", 10)

	body, contentType := multipartPhoto(t, "text/plain", []byte("not an image"))
	w := app.do(t, "POST", fmt.Sprintf("/planets/%d/photo", seeded.ID), body,
		withCookie(cookie), withContentType(contentType))

	if w.Code != 500 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Error: uploaded file must be a .png, .jpg or .jpeg image") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestAttachPhoto_Oversize(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Imaged", 10)

	oversize := bytes.Repeat([]byte{0}, int(app.cfg.Upload.MaxFileSize)+1)
	body, contentType := multipartPhoto(t, "image/png", oversize)
	w := app.do(t, "POST", fmt.Sprintf("/planets/%d/photo", seeded.ID), body,
		withCookie(cookie), withContentType(contentType))

	if w.Code != 500 {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "File too large") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestAttachPhoto_NoFile(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")
	seeded := app.seedPlanet(t, "Imaged", 10)

	w := app.do(t, "POST", fmt.Sprintf("/planets/%d/photo", seeded.ID), nil, withCookie(cookie))

	if w.Code != 400 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "No photo uploaded") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestAttachPhoto_PlanetMissing(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "editor")

	body, contentType := multipartPhoto(t, "image/png", []byte("png-bytes"))
	w := app.do(t, "POST", "/planets/12345/photo", body,
		withCookie(cookie), withContentType(contentType))

	if w.Code != 404 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot POST /planets/12345/photo") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestServePhotoFile(t *testing.T) {
	app := newTestApp(t)

	filename := "photo-on-disk.png"
	if err := os.WriteFile(filepath.Join(app.cfg.Upload.Dir, filename), []byte("bytes"), 0o600); err != nil {
		t.Fatalf("writefile: %v", err)
	}

	w := app.do(t, "GET", "/planets/photo/"+filename, nil)

	if w.Code != 200 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "bytes" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestServePhotoFile_Missing(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "GET", "/planets/photo/ghost.png", nil)

	if w.Code != 404 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cannot GET /planets/photo/ghost.png") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestDiameterCoercion_StringAccepted(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "astronaut")

	w := app.do(t, "POST", "/planets",
		strings.NewReader(`{"name":"Coerced","diameter":"6000"}`), withCookie(cookie))

	if w.Code != 201 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	p := decodePlanet(t, w.Body)
	if p.Diameter != 6000 {
		t.Fatalf("diameter=%d", p.Diameter)
	}
}
