package dto

import (
	"time"

	"github.com/spec-kit/link-shortener/internal/domain"
)

// CreateURLRequest payload for shortening a URL.
type CreateURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// URLResponse is the public projection of a short URL.
type URLResponse struct {
	ID        string    `json:"id"`
	Alias     string    `json:"alias"`
	Target    string    `json:"target"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
}

// NewURLResponse maps the domain model.
func NewURLResponse(url *domain.ShortURL) URLResponse {
	return URLResponse{
		ID:        url.ID,
		Alias:     url.Alias,
		Target:    url.Target,
		Clicks:    url.Clicks,
		CreatedAt: url.CreatedAt,
	}
}
