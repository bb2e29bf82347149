// Package site serves the embedded operator documentation.
package site

import (
	"context"
	"net/http"
)

// Register attaches the documentation routes to mux:
//
//	GET /       -> redirect to /dashboard
//	GET /docs   -> redirect to /docs/
//	GET /docs/  -> embedded pages
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /{$}", http.RedirectHandler("/dashboard", http.StatusFound))
	mux.Handle("GET /docs", http.RedirectHandler("/docs/", http.StatusMovedPermanently))
	mux.Handle("GET /docs/", http.StripPrefix("/docs/", http.FileServer(FS())))
}
