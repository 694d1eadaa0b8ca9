package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/astrelay/astrelay/internal/alice"
	"github.com/astrelay/astrelay/internal/assistant"
	"github.com/astrelay/astrelay/internal/config"
	"github.com/astrelay/astrelay/internal/dispatch"
	"github.com/astrelay/astrelay/internal/observability"
	"github.com/astrelay/astrelay/internal/telegram"
	"github.com/astrelay/astrelay/internal/universal"
)

// maxBodyBytes bounds inbound webhook payloads.
const maxBodyBytes = 1 << 20

type Server struct {
	cfg        config.Config
	dispatcher *dispatch.Dispatcher
	adapters   map[universal.Platform]universal.Adapter
	metrics    *observability.Metrics
	tap        *tapHub
	upgrader   websocket.Upgrader
}

func New(cfg config.Config, dispatcher *dispatch.Dispatcher, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		adapters: map[universal.Platform]universal.Adapter{
			universal.PlatformAlice:     alice.NewAdapter(),
			universal.PlatformTelegram:  telegram.NewAdapter(),
			universal.PlatformAssistant: assistant.NewAdapter(),
		},
		metrics: metrics,
		tap:     newTapHub(metrics),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser clients may watch the tap unless
				// explicitly relaxed; non-browser clients omit Origin.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/webhooks/alice", s.handleAliceWebhook)
	r.Post("/webhooks/telegram", s.handleTelegramWebhook)
	r.Post("/webhooks/assistant", s.handleAssistantWebhook)

	r.Get("/v1/perf/latency", s.handlePerfLatency)
	if s.cfg.TapEnabled {
		r.Get("/v1/debug/tap", s.handleTap)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"tap_enabled": s.cfg.TapEnabled,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.PerfSnapshot())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
