package thumbnail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
)

const ContentType = "image/svg+xml"

// Cache stores rendered cards by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type Service struct {
	cache Cache
	log   zerolog.Logger
}

// NewService returns a renderer; cache may be nil.
func NewService(cache Cache, log zerolog.Logger) *Service {
	return &Service{cache: cache, log: log}
}

// CacheKey derives the object key from the parsed card, so paths that
// differ only in ignored arguments, argument order or decoration share one
// object.
func CacheKey(card Card) string {
	canonical := fmt.Sprintf("%q|%q|%q|%d|%d|%d|%d|%q|%q",
		card.Emoji, card.Title, card.Body,
		card.FontSize, card.Width, card.Height, card.EmojiSize,
		card.Background.From, card.Background.To)
	sum := sha256.Sum256([]byte(canonical))
	return "thumbnails/" + hex.EncodeToString(sum[:]) + ".svg"
}

// Get returns the SVG for path. Cache failures fall back to rendering.
func (s *Service) Get(ctx context.Context, path string) ([]byte, error) {
	card, err := Parse(path)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		return []byte(card.Render()), nil
	}

	key := CacheKey(card)
	if data, err := s.cache.Get(ctx, key); err == nil {
		if servable(data) {
			return data, nil
		}
		s.log.Warn().Str("key", key).Msg("discarding unexpected cached thumbnail")
	}

	data := []byte(card.Render())
	if err := s.cache.Put(ctx, key, data, ContentType); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("thumbnail cache write failed")
	}
	return data, nil
}
