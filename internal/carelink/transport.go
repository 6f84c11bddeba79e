package carelink

import (
	"context"
	"net/http"
)

type authKey struct{}

// withAuth marks requests that must carry the bearer token.
func withAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, authKey{}, true)
}

func needsAuth(ctx context.Context) bool {
	v, _ := ctx.Value(authKey{}).(bool)
	return v
}

// headerInjectingTransport sets the headers CareLink expects on every
// request and the bearer token on API requests.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	token     func() string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if clone.Header.Get("Accept-Language") == "" {
		clone.Header.Set("Accept-Language", "en;q=0.9, *;q=0.8")
	}
	if needsAuth(clone.Context()) {
		if token := t.token(); token != "" {
			clone.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return t.base.RoundTrip(clone)
}
