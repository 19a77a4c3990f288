package artifact

import (
	"context"
	"errors"
	"strings"
	"time"

	dErrors "docproof/pkg/domain-errors"
	"docproof/pkg/platform/sentinel"
)

// Service fronts the gateway with validation and the access link cache.
type Service struct {
	gateway Gateway
	cache   LinkCache
	expiry  time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithLinkCache enables access link memoization.
func WithLinkCache(cache LinkCache) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithLinkExpiry overrides the access link lifetime.
func WithLinkExpiry(expiry time.Duration) ServiceOption {
	return func(s *Service) {
		if expiry > 0 {
			s.expiry = expiry
		}
	}
}

func NewService(gateway Gateway, opts ...ServiceOption) *Service {
	s := &Service{
		gateway: gateway,
		expiry:  DefaultLinkExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store validates an upload and pins it, returning the content id callers
// use to reference the file from then on.
func (s *Service) Store(ctx context.Context, upload Upload) (string, error) {
	if err := upload.Validate(); err != nil {
		return "", err
	}
	cid, err := s.gateway.Pin(ctx, upload)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "upload failed", err)
	}
	return cid, nil
}

// View returns a short-lived access link for a stored file, together with
// the lifetime the link was minted for.
func (s *Service) View(ctx context.Context, cid string) (string, time.Duration, error) {
	cid = strings.TrimSpace(cid)
	if cid == "" {
		return "", 0, dErrors.New(dErrors.CodeBadRequest, "cid is required")
	}

	if s.cache != nil {
		if url, ok, err := s.cache.Get(ctx, cid); err == nil && ok {
			return url, s.expiry, nil
		}
		// A cache failure only costs a second gateway round trip.
	}

	url, err := s.gateway.AccessLink(ctx, cid, s.expiry)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", 0, dErrors.New(dErrors.CodeNotFound, "no file stored under this cid")
		}
		return "", 0, dErrors.Wrap(dErrors.CodeInternal, "access link failed", err)
	}

	if s.cache != nil {
		// Cache for slightly less than the link lifetime so a hit never
		// serves an already expired URL.
		if ttl := s.expiry - 5*time.Second; ttl > 0 {
			_ = s.cache.Set(ctx, cid, url, ttl)
		}
	}
	return url, s.expiry, nil
}
