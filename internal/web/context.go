package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/intake/internal/core"
)

// WithRequestMetadata copies the client IP and User-Agent into ctx for the
// pipeline's log lines.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already rewritten by TrustedRealIP
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, r.Header.Get("User-Agent"))
	return ctx
}
