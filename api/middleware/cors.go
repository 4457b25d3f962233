package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// The diagnostics surface only serves local tooling and the on-prem dashboard.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// CORS returns middleware that applies the diagnostics origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
