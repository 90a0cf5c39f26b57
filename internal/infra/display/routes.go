package display

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexHTML []byte

// Routes serves the kiosk screen page on / and its websocket on /ws.
func (h *Hub) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", h)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})
	return mux
}
