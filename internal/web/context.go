package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/hsncheck/internal/core"
)

// withClient adds the client IP and User-Agent to the request context.
func withClient(r *http.Request) context.Context {
	// RemoteAddr was already resolved by TrustedRealIP
	return core.WithClient(r.Context(), r.RemoteAddr, r.Header.Get("User-Agent"))
}
