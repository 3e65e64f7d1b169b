package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// tooLargeBody mirrors the API error envelope so clients see one error shape
// whether the limit trips here or inside a handler.
type tooLargeBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewMaxBodySizeHandler returns a middleware that caps request bodies at limit
// bytes. Imports and photo uploads carrying data URLs are the large requests
// this guards.
//
// A request advertising a larger Content-Length is answered with 413 and a
// body_too_large error before the next handler runs. Bodies of unknown length
// are wrapped in http.MaxBytesReader, so the handler's read fails once the
// limit is crossed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				var body tooLargeBody
				body.Error.Code = "body_too_large"
				body.Error.Message = fmt.Sprintf("request body exceeds %d bytes", limit)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_ = json.NewEncoder(w).Encode(body)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
