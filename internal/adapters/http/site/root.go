// Package site serves the embedded browser dashboard. It only talks to the
// JSON API; nothing is rendered server side.
package site

import (
	"context"
	"net/http"
)

// Register attaches the dashboard site routes to mux at /.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", http.FileServer(FS()))
}
