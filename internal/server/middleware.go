package server

import (
	"context"
	"net/http"
)

// callerIDHeader carries the platform-verified caller identity. Session
// verification itself is a platform concern; this layer only needs "who is
// calling".
const callerIDHeader = "X-Caller-ID"

type contextKey string

const callerKey contextKey = "caller"

// CORS applies the widest-possible cross-origin policy to every response and
// answers preflight requests immediately, before any other logic.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CallerIdentity extracts the caller identity header into the request
// context. An absent header leaves the caller empty; endpoints that require
// identity reject it downstream.
func CallerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := r.Header.Get(callerIDHeader)
		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerID returns the caller identity from the context, or "".
func CallerID(ctx context.Context) string {
	caller, _ := ctx.Value(callerKey).(string)
	return caller
}
