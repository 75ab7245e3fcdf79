package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/link-shortener/internal/domain"
)

// URLRepository encapsulates short URL persistence.
type URLRepository interface {
	Create(ctx context.Context, url *domain.ShortURL) error
	GetByID(ctx context.Context, id string) (*domain.ShortURL, error)
	GetByAlias(ctx context.Context, alias string) (*domain.ShortURL, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.ShortURL, error)
	ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]domain.ShortURL, error)
	Delete(ctx context.Context, id string) error
	AddClicks(ctx context.Context, alias string, delta int64) error
}

type urlRepository struct {
	pool *pgxpool.Pool
}

// NewURLRepository instantiates repository.
func NewURLRepository(pool *pgxpool.Pool) URLRepository {
	return &urlRepository{pool: pool}
}

func (r *urlRepository) Create(ctx context.Context, url *domain.ShortURL) error {
	const query = `
        INSERT INTO urls (alias, target, created_by)
        VALUES ($1, $2, $3)
        RETURNING id, clicks, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		url.Alias,
		url.Target,
		url.CreatedBy,
	).Scan(&url.ID, &url.Clicks, &url.CreatedAt, &url.UpdatedAt)
}

func (r *urlRepository) GetByID(ctx context.Context, id string) (*domain.ShortURL, error) {
	const query = `
        SELECT id, alias, target, created_by, clicks, created_at, updated_at
        FROM urls WHERE id=$1`
	return r.scanOne(ctx, query, id)
}

func (r *urlRepository) GetByAlias(ctx context.Context, alias string) (*domain.ShortURL, error) {
	const query = `
        SELECT id, alias, target, created_by, clicks, created_at, updated_at
        FROM urls WHERE alias=$1`
	return r.scanOne(ctx, query, alias)
}

func (r *urlRepository) scanOne(ctx context.Context, query string, arg any) (*domain.ShortURL, error) {
	var url domain.ShortURL
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&url.ID,
		&url.Alias,
		&url.Target,
		&url.CreatedBy,
		&url.Clicks,
		&url.CreatedAt,
		&url.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &url, nil
}

func (r *urlRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.ShortURL, error) {
	const query = `
        SELECT id, alias, target, created_by, clicks, created_at, updated_at
        FROM urls ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *urlRepository) ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]domain.ShortURL, error) {
	const query = `
        SELECT id, alias, target, created_by, clicks, created_at, updated_at
        FROM urls WHERE created_by=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, creatorID, limit, offset)
}

func (r *urlRepository) list(ctx context.Context, query string, args ...any) ([]domain.ShortURL, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []domain.ShortURL
	for rows.Next() {
		var url domain.ShortURL
		if err := rows.Scan(
			&url.ID,
			&url.Alias,
			&url.Target,
			&url.CreatedBy,
			&url.Clicks,
			&url.CreatedAt,
			&url.UpdatedAt,
		); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func (r *urlRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM urls WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *urlRepository) AddClicks(ctx context.Context, alias string, delta int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE urls SET clicks = clicks + $1, updated_at = NOW() WHERE alias=$2`,
		delta, alias)
	return err
}
