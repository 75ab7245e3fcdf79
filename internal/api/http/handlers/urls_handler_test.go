package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/link-shortener/internal/api/http"
	"github.com/spec-kit/link-shortener/internal/api/http/handlers"
	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/domain"
	"github.com/spec-kit/link-shortener/internal/service"
)

type memoryURLRepo struct {
	byAlias map[string]*domain.ShortURL
	byID    map[string]*domain.ShortURL
	nextID  int
}

func newMemoryURLRepo() *memoryURLRepo {
	return &memoryURLRepo{
		byAlias: make(map[string]*domain.ShortURL),
		byID:    make(map[string]*domain.ShortURL),
	}
}

func (m *memoryURLRepo) Create(_ context.Context, url *domain.ShortURL) error {
	m.nextID++
	url.ID = "url-" + strconv.Itoa(m.nextID)
	m.byAlias[url.Alias] = url
	m.byID[url.ID] = url
	return nil
}

func (m *memoryURLRepo) GetByID(_ context.Context, id string) (*domain.ShortURL, error) {
	if url, ok := m.byID[id]; ok {
		return url, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryURLRepo) GetByAlias(_ context.Context, alias string) (*domain.ShortURL, error) {
	if url, ok := m.byAlias[alias]; ok {
		return url, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryURLRepo) ListAll(_ context.Context, limit, offset int) ([]domain.ShortURL, error) {
	var urls []domain.ShortURL
	for _, url := range m.byID {
		urls = append(urls, *url)
	}
	return urls, nil
}

func (m *memoryURLRepo) ListByCreator(_ context.Context, creatorID string, limit, offset int) ([]domain.ShortURL, error) {
	var urls []domain.ShortURL
	for _, url := range m.byID {
		if url.CreatedBy == creatorID {
			urls = append(urls, *url)
		}
	}
	return urls, nil
}

func (m *memoryURLRepo) Delete(_ context.Context, id string) error {
	url, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	delete(m.byAlias, url.Alias)
	return nil
}

func (m *memoryURLRepo) AddClicks(_ context.Context, alias string, delta int64) error {
	if url, ok := m.byAlias[alias]; ok {
		url.Clicks += delta
	}
	return nil
}

func newURLTestApp(t *testing.T) (*fiber.App, *auth.TokenManager, *memoryURLRepo) {
	t.Helper()

	repo := newMemoryURLRepo()
	urlService := service.NewURLService(repo, nil, nil, nil, 7)
	tm := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	mw := auth.NewAuthMiddleware(tm, nil)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)

	h := handlers.NewURLsHandler(urlService, nil)
	app.Get("/r/:alias", h.Redirect)
	app.Get("/api/url", h.List)
	private := app.Group("/api/private", mw.Handle)
	private.Post("/url/save", h.Create)
	private.Delete("/url/:id", h.Delete)

	return app, tm, repo
}

func accessCookie(t *testing.T, tm *auth.TokenManager, subject string, role domain.Role) *http.Cookie {
	t.Helper()
	session, err := tm.IssueSession(subject, role)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	return &http.Cookie{Name: auth.AccessCookieName, Value: session.AccessToken}
}

func TestCreateURLRequiresAuthentication(t *testing.T) {
	app, _, _ := newURLTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/private/url/save", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateAndRedirect(t *testing.T) {
	app, tm, _ := newURLTestApp(t)

	body := `{"url":"https://example.com/some/page"}`
	req := httptest.NewRequest(http.MethodPost, "/api/private/url/save", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(accessCookie(t, tm, "user-1", domain.RoleUser))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var created struct {
		Data struct {
			Alias string `json:"alias"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	redirectReq := httptest.NewRequest(http.MethodGet, "/r/"+created.Data.Alias, nil)
	redirectResp, err := app.Test(redirectReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if redirectResp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", redirectResp.StatusCode)
	}
	if loc := redirectResp.Header.Get("Location"); loc != "https://example.com/some/page" {
		t.Errorf("Location = %q", loc)
	}
}

func TestCreateURLRejectsUnsupportedScheme(t *testing.T) {
	app, tm, _ := newURLTestApp(t)

	for _, body := range []string{
		`{"url":"ftp://example.com/file"}`,
		`{"url":"https://"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/private/url/save", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(accessCookie(t, tm, "user-1", domain.RoleUser))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("body %s: status = %d, want 422", body, resp.StatusCode)
		}
	}
}

func TestRedirectUnknownAlias(t *testing.T) {
	app, _, _ := newURLTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/r/nothere", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteURLForbiddenForStranger(t *testing.T) {
	app, tm, repo := newURLTestApp(t)

	short := &domain.ShortURL{Alias: "abc1234", Target: "https://example.com", CreatedBy: "owner-1"}
	if err := repo.Create(context.Background(), short); err != nil {
		t.Fatalf("seed url: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/private/url/"+short.ID, nil)
	req.AddCookie(accessCookie(t, tm, "stranger", domain.RoleUser))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestDeleteURLAllowedForModerator(t *testing.T) {
	app, tm, repo := newURLTestApp(t)

	short := &domain.ShortURL{Alias: "abc1234", Target: "https://example.com", CreatedBy: "owner-1"}
	if err := repo.Create(context.Background(), short); err != nil {
		t.Fatalf("seed url: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/private/url/"+short.ID, nil)
	req.AddCookie(accessCookie(t, tm, "mod-1", domain.RoleModerator))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestListURLsIsPublic(t *testing.T) {
	app, _, repo := newURLTestApp(t)

	short := &domain.ShortURL{Alias: "abc1234", Target: "https://example.com", CreatedBy: "owner-1"}
	if err := repo.Create(context.Background(), short); err != nil {
		t.Fatalf("seed url: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/url", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
