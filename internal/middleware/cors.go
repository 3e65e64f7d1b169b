package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// corsMaxAge is how long, in seconds, browsers may cache a preflight result.
const corsMaxAge = 600

// NewCORSHandler returns a middleware that lets the map front-end, served
// from one of allowedOrigins, call the API. Each entry must be a full origin
// (scheme + host, no trailing slash); "*" allows any origin.
//
// Content-Disposition is exposed so the CSV export can be saved under its
// file name, and the request ID is exposed so the front-end can quote it
// when reporting errors.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", chimiddleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", chimiddleware.RequestIDHeader},
		MaxAge:         corsMaxAge,
	})
	return c.Handler
}
