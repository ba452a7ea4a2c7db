// Package auth resolves bearer credentials to user ids through the external
// auth service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tidwall/gjson"
)

// ErrUnauthorized is returned for a missing, malformed or rejected credential.
var ErrUnauthorized = errors.New("unauthorized")

// Resolver maps a bearer token to the id of the user it belongs to.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type Config struct {
	URL       string
	APIKey    string
	CacheSize int
	CacheTTL  time.Duration
	Timeout   time.Duration
}

// SupabaseResolver asks a Supabase-compatible auth endpoint who owns a token.
// Successful lookups are cached for CacheTTL.
type SupabaseResolver struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *lru.LRU[string, string]
}

func NewSupabaseResolver(cfg Config) *SupabaseResolver {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SupabaseResolver{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		cache:   lru.NewLRU[string, string](size, nil, ttl),
	}
}

func (r *SupabaseResolver) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	if userID, ok := r.cache.Get(token); ok {
		return userID, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read auth response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	userID := gjson.GetBytes(body, "id").String()
	if userID == "" {
		return "", ErrUnauthorized
	}

	r.cache.Add(token, userID)
	return userID, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrUnauthorized
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthorized
	}
	return token, nil
}
