package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"talk2order/internal/application"
)

// ErrQueueFull is returned by Inject when captures are arriving faster than
// the kiosk consumes them.
var ErrQueueFull = errors.New("capture queue full")

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 1024
)

// HTTPSource accepts utterances pushed by a remote client: recorded audio on
// POST /audio, already-transcribed text on POST /text.
type HTTPSource struct {
	addr        string
	server      *http.Server
	captures    chan application.Capture
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
	authToken   string

	// queueMu guards closing captures against concurrent sends.
	queueMu sync.RWMutex
	closed  bool
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		captures:    make(chan application.Capture, 10),
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute),
		authToken:   authToken,
	}
	h.mux.HandleFunc("POST /audio", h.rateLimiter.Middleware(h.authorize(h.handleAudio)))
	h.mux.HandleFunc("POST /text", h.rateLimiter.Middleware(h.authorize(h.handleText)))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP capture server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.queueMu.Lock()
	if !h.closed {
		h.closed = true
		close(h.captures)
	}
	h.queueMu.Unlock()
	h.running = false
	return nil
}

func (h *HTTPSource) NextCapture(ctx context.Context) (application.Capture, error) {
	select {
	case <-ctx.Done():
		return application.Capture{}, ctx.Err()
	case c, ok := <-h.captures:
		if !ok {
			return application.Capture{}, application.ErrSourceClosed
		}
		return c, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

// Inject queues a capture without going through HTTP. It never blocks.
func (h *HTTPSource) Inject(c application.Capture) error {
	h.queueMu.RLock()
	defer h.queueMu.RUnlock()

	if h.closed {
		return application.ErrSourceClosed
	}
	select {
	case h.captures <- c:
		return nil
	default:
		return ErrQueueFull
	}
}

func (h *HTTPSource) rejectCapture(w http.ResponseWriter, err error) {
	if errors.Is(err, application.ErrSourceClosed) {
		http.Error(w, "not accepting captures", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
}

func (h *HTTPSource) authorize(next http.HandlerFunc) http.HandlerFunc {
	if h.authToken == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != h.authToken {
			h.logger.Warn("unauthorized capture request", "remote_addr", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (h *HTTPSource) handleAudio(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	if err := h.Inject(application.Capture{Audio: data}); err != nil {
		h.rejectCapture(w, err)
		return
	}

	h.logger.Info("received audio via HTTP", "bytes", len(data))
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "bytes": len(data)})
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxTextBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	if err := h.Inject(application.Capture{Text: text}); err != nil {
		h.rejectCapture(w, err)
		return
	}

	h.logger.Info("received text via HTTP", "text", text)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "text": text})
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	queueSize := len(h.captures)
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{"status": status, "running": running, "queue_size": queueSize})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
