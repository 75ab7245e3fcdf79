package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/domain"
)

type fakeURLRepo struct {
	byAlias map[string]*domain.ShortURL
	byID    map[string]*domain.ShortURL
	nextID  int
}

func newFakeURLRepo() *fakeURLRepo {
	return &fakeURLRepo{
		byAlias: make(map[string]*domain.ShortURL),
		byID:    make(map[string]*domain.ShortURL),
	}
}

func (f *fakeURLRepo) Create(_ context.Context, url *domain.ShortURL) error {
	if _, ok := f.byAlias[url.Alias]; ok {
		return errors.New("duplicate alias")
	}
	f.nextID++
	url.ID = "url-" + strconv.Itoa(f.nextID)
	f.byAlias[url.Alias] = url
	f.byID[url.ID] = url
	return nil
}

func (f *fakeURLRepo) GetByID(_ context.Context, id string) (*domain.ShortURL, error) {
	if url, ok := f.byID[id]; ok {
		return url, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeURLRepo) GetByAlias(_ context.Context, alias string) (*domain.ShortURL, error) {
	if url, ok := f.byAlias[alias]; ok {
		return url, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeURLRepo) ListAll(_ context.Context, limit, offset int) ([]domain.ShortURL, error) {
	var urls []domain.ShortURL
	for _, url := range f.byID {
		urls = append(urls, *url)
	}
	return urls, nil
}

func (f *fakeURLRepo) ListByCreator(_ context.Context, creatorID string, limit, offset int) ([]domain.ShortURL, error) {
	var urls []domain.ShortURL
	for _, url := range f.byID {
		if url.CreatedBy == creatorID {
			urls = append(urls, *url)
		}
	}
	return urls, nil
}

func (f *fakeURLRepo) Delete(_ context.Context, id string) error {
	url, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	delete(f.byAlias, url.Alias)
	return nil
}

func (f *fakeURLRepo) AddClicks(_ context.Context, alias string, delta int64) error {
	url, ok := f.byAlias[alias]
	if !ok {
		return pgx.ErrNoRows
	}
	url.Clicks += delta
	return nil
}

func TestCreateShortURL(t *testing.T) {
	repo := newFakeURLRepo()
	svc := NewURLService(repo, nil, nil, nil, 7)

	short, err := svc.Create(context.Background(), "https://example.com/some/path", "user-1", "http")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(short.Alias) != 7 {
		t.Errorf("alias length = %d, want 7", len(short.Alias))
	}
	if short.Target != "https://example.com/some/path" {
		t.Errorf("target = %q", short.Target)
	}
	if short.CreatedBy != "user-1" {
		t.Errorf("created_by = %q", short.CreatedBy)
	}
}

func TestCreateRejectsInvalidTarget(t *testing.T) {
	svc := NewURLService(newFakeURLRepo(), nil, nil, nil, 7)

	for _, target := range []string{"", "ftp://example.com/file", "http://", "   "} {
		if _, err := svc.Create(context.Background(), target, "user-1", "http"); err == nil {
			t.Errorf("Create(%q) expected error", target)
		}
	}
}

func TestNormalizeTargetDefaultsScheme(t *testing.T) {
	normalized, err := NormalizeTarget("example.com/page")
	if err != nil {
		t.Fatalf("NormalizeTarget: %v", err)
	}
	if normalized != "http://example.com/page" {
		t.Errorf("normalized = %q, want http://example.com/page", normalized)
	}
}

func TestResolveCountsClicks(t *testing.T) {
	repo := newFakeURLRepo()
	svc := NewURLService(repo, nil, nil, nil, 7)

	short, err := svc.Create(context.Background(), "https://example.com", "user-1", "http")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		target, err := svc.Resolve(context.Background(), short.Alias)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if target != short.Target {
			t.Errorf("target = %q, want %q", target, short.Target)
		}
	}

	stored, err := repo.GetByAlias(context.Background(), short.Alias)
	if err != nil {
		t.Fatalf("GetByAlias: %v", err)
	}
	if stored.Clicks != 3 {
		t.Errorf("clicks = %d, want 3", stored.Clicks)
	}
}

func TestResolveUnknownAlias(t *testing.T) {
	svc := NewURLService(newFakeURLRepo(), nil, nil, nil, 7)

	if _, err := svc.Resolve(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown alias")
	}
}

func TestDeleteAuthorization(t *testing.T) {
	repo := newFakeURLRepo()
	svc := NewURLService(repo, nil, nil, nil, 7)

	short, err := svc.Create(context.Background(), "https://example.com", "owner-1", "http")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stranger := &auth.Identity{SubjectID: "other-user", Role: domain.RoleUser}
	if err := svc.Delete(context.Background(), short.ID, stranger); err == nil {
		t.Error("expected non-owning user to be forbidden")
	}

	if err := svc.Delete(context.Background(), short.ID, nil); err == nil {
		t.Error("expected missing identity to be forbidden")
	}

	owner := &auth.Identity{SubjectID: "owner-1", Role: domain.RoleUser}
	if err := svc.Delete(context.Background(), short.ID, owner); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}

	// moderators may delete anything
	short2, err := svc.Create(context.Background(), "https://example.org", "owner-1", "http")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	mod := &auth.Identity{SubjectID: "mod-1", Role: domain.RoleModerator}
	if err := svc.Delete(context.Background(), short2.ID, mod); err != nil {
		t.Errorf("moderator delete failed: %v", err)
	}
}

func TestRandomAliasCharset(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		alias, err := randomAlias(7)
		if err != nil {
			t.Fatalf("randomAlias: %v", err)
		}
		if len(alias) != 7 {
			t.Fatalf("alias length = %d", len(alias))
		}
		for _, r := range alias {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				t.Fatalf("alias %q contains unexpected character %q", alias, r)
			}
		}
		seen[alias] = true
	}
	if len(seen) < 45 {
		t.Errorf("expected mostly unique aliases, got %d distinct of 50", len(seen))
	}
}
