package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/domain"
	"github.com/spec-kit/link-shortener/internal/events"
	"github.com/spec-kit/link-shortener/internal/repository"
	apperrors "github.com/spec-kit/link-shortener/pkg/util/errorutil"
)

const (
	aliasCharset    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	aliasCacheTTL   = time.Hour
	aliasMaxRetries = 3
)

// ErrInvalidTarget reports a target that does not parse as an absolute
// http(s) URL.
var ErrInvalidTarget = errors.New("invalid target url")

// URLService coordinates short URL workflows. Redis is optional: with a nil
// client lookups and click counting fall through to Postgres directly.
type URLService struct {
	urls        repository.URLRepository
	cache       *redis.Client
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	aliasLength int
}

// NewURLService constructs the service.
func NewURLService(urls repository.URLRepository, cache *redis.Client, dispatcher events.Dispatcher, logger *zap.Logger, aliasLength int) *URLService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aliasLength <= 0 {
		aliasLength = 7
	}
	return &URLService{
		urls:        urls,
		cache:       cache,
		dispatcher:  dispatcher,
		logger:      logger,
		aliasLength: aliasLength,
	}
}

// Create shortens target on behalf of createdBy. Alias collisions are rare
// and retried a few times before giving up.
func (s *URLService) Create(ctx context.Context, target, createdBy string, source events.Source) (*domain.ShortURL, error) {
	normalized, err := NormalizeTarget(target)
	if err != nil {
		return nil, err
	}

	var short *domain.ShortURL
	for attempt := 0; attempt < aliasMaxRetries; attempt++ {
		alias, err := randomAlias(s.aliasLength)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		candidate := &domain.ShortURL{Alias: alias, Target: normalized, CreatedBy: createdBy}
		if err := s.urls.Create(ctx, candidate); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		short = candidate
		break
	}
	if short == nil {
		return nil, apperrors.NewInternalError(errors.New("alias space exhausted"))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventURLCreated,
			Source:    source,
			Timestamp: time.Now(),
			Payload:   events.URLCreatedPayload{URLID: short.ID, Alias: short.Alias, CreatedBy: createdBy},
		})
	}
	return short, nil
}

// Resolve returns the target for an alias and records the click. The click
// is buffered in Redis and flushed to Postgres by the sync worker; without
// Redis the row is updated inline.
func (s *URLService) Resolve(ctx context.Context, alias string) (string, error) {
	if s.cache != nil {
		if target, err := s.cache.Get(ctx, aliasCacheKey(alias)).Result(); err == nil {
			s.countClick(ctx, alias)
			return target, nil
		}
	}

	short, err := s.urls.GetByAlias(ctx, alias)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, aliasCacheKey(alias), short.Target, aliasCacheTTL).Err(); err != nil {
			s.logger.Warn("cache alias", zap.Error(err))
		}
	}
	s.countClick(ctx, alias)
	return short.Target, nil
}

// ListAll returns recent short URLs.
func (s *URLService) ListAll(ctx context.Context, limit, offset int) ([]domain.ShortURL, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.urls.ListAll(ctx, limit, offset)
}

// ListByCreator returns short URLs owned by creatorID.
func (s *URLService) ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]domain.ShortURL, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.urls.ListByCreator(ctx, creatorID, limit, offset)
}

// Delete removes a short URL. Owners may delete their own entries; admins
// and moderators may delete any.
func (s *URLService) Delete(ctx context.Context, id string, identity *auth.Identity) error {
	short, err := s.urls.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !auth.RoleAllowed(identity, domain.RoleAdmin, domain.RoleModerator) {
		if identity == nil || identity.SubjectID != short.CreatedBy {
			return apperrors.NewForbidden("forbidden")
		}
	}

	if err := s.urls.Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, aliasCacheKey(short.Alias)).Err(); err != nil {
			s.logger.Warn("evict alias cache", zap.Error(err))
		}
	}

	if s.dispatcher != nil {
		deletedBy := ""
		if identity != nil {
			deletedBy = identity.SubjectID
		}
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventURLDeleted,
			Source:    events.SourceHTTP,
			Timestamp: time.Now(),
			Payload:   events.URLDeletedPayload{URLID: short.ID, Alias: short.Alias, DeletedBy: deletedBy},
		})
	}
	return nil
}

func (s *URLService) countClick(ctx context.Context, alias string) {
	if s.cache != nil {
		if err := s.cache.Incr(ctx, ClickKey(alias)).Err(); err == nil {
			return
		}
	}
	if err := s.urls.AddClicks(ctx, alias, 1); err != nil {
		s.logger.Warn("record click", zap.String("alias", alias), zap.Error(err))
	}
}

// NormalizeTarget validates target and defaults a missing scheme to http,
// mirroring how bare hostnames are accepted from chat messages.
func NormalizeTarget(target string) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", ErrInvalidTarget
	}
	if parsed.Scheme == "" {
		parsed, err = url.Parse("http://" + target)
		if err != nil {
			return "", ErrInvalidTarget
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidTarget
	}
	if parsed.Host == "" {
		return "", ErrInvalidTarget
	}
	return parsed.String(), nil
}

// ClickKey is the Redis key buffering click counts for an alias.
func ClickKey(alias string) string {
	return "url:clicks:" + alias
}

// ClickKeyPattern matches all buffered click keys.
const ClickKeyPattern = "url:clicks:*"

// AliasFromClickKey recovers the alias from a buffered click key.
func AliasFromClickKey(key string) string {
	const prefix = "url:clicks:"
	if len(key) <= len(prefix) {
		return ""
	}
	return key[len(prefix):]
}

func aliasCacheKey(alias string) string {
	return "url:alias:" + alias
}

// randomAlias draws aliasLength characters from the alphanumeric charset
// using the system CSPRNG.
func randomAlias(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate alias: %w", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = aliasCharset[int(b)%len(aliasCharset)]
	}
	return string(out), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
