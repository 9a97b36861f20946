// Package ws serves prompt analysis over a WebSocket, for browser-extension
// clients that prefer one long-lived connection to per-request HTTP.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/HerbHall/promptlens/internal/analysis"
	"github.com/HerbHall/promptlens/internal/auth"
	"github.com/HerbHall/promptlens/internal/ratelimit"
	"github.com/HerbHall/promptlens/internal/server"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// maxMessageBytes bounds one client message.
const maxMessageBytes = 8 << 20

// Handler provides the analysis WebSocket endpoint.
type Handler struct {
	hub      *Hub
	analyzer *analysis.Analyzer
	limiter  *ratelimit.Limiter
	verifier *auth.Verifier
	cors     server.CORSConfig
	callers  *server.CallerKeys
	logger   *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ server.RouteRegistrar = (*Handler)(nil)

// NewHandler creates a WebSocket handler. Browser handshakes must come from
// an origin that cors allows; callers keys the shared rate limiter.
func NewHandler(analyzer *analysis.Analyzer, limiter *ratelimit.Limiter, verifier *auth.Verifier, cors server.CORSConfig, callers *server.CallerKeys, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      NewHub(logger),
		analyzer: analyzer,
		limiter:  limiter,
		verifier: verifier,
		cors:     cors,
		callers:  callers,
		logger:   logger,
	}
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/analyze", h.handleAnalyzeStream)
}

// Close disconnects every client. http.Server.Shutdown does not close
// hijacked connections, so serve calls this during shutdown.
func (h *Handler) Close() {
	h.hub.CloseAll("server shutting down")
}

// ClientCount returns the number of connected clients.
func (h *Handler) ClientCount() int {
	return h.hub.ClientCount()
}

// handleAnalyzeStream upgrades the connection and answers analyzePrompt
// messages one at a time.
func (h *Handler) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	// Non-browser clients send no Origin; browsers always do.
	if origin := r.Header.Get("Origin"); origin != "" && !h.cors.Allows(origin) {
		h.logger.Debug("websocket origin rejected", zap.String("origin", origin))
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}
	if err := h.authenticate(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	// The origin was checked against the CORS allow-list above.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	client := &Client{
		conn:   conn,
		caller: h.callers.Key(r),
		send:   make(chan any, 16),
		logger: h.logger,
	}
	h.hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	client.readPump(ctx, func(ctx context.Context, typ websocket.MessageType, data []byte) any {
		return h.handleMessage(ctx, client.caller, typ, data)
	})

	// Client disconnected -- stop write pump and unregister.
	h.hub.Unregister(client)
	<-done
	conn.Close(websocket.StatusNormalClosure, "")
}

// authenticate accepts the bearer from the Authorization header, or from
// the token query parameter since browser WebSocket APIs cannot set headers.
func (h *Handler) authenticate(r *http.Request) error {
	if header := r.Header.Get("Authorization"); header != "" {
		_, err := h.verifier.VerifyHeader(header)
		return err
	}
	_, err := h.verifier.Verify(strings.TrimSpace(r.URL.Query().Get("token")))
	return err
}

// handleMessage runs one request and returns the tagged response.
func (h *Handler) handleMessage(ctx context.Context, caller string, typ websocket.MessageType, data []byte) any {
	start := time.Now()

	var req Request
	if typ != websocket.MessageText {
		return h.errorReply("", analysis.InputError("messages must be JSON text"), start)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return h.errorReply("", analysis.InputError("invalid JSON message"), start)
	}
	if req.Action != ActionAnalyzePrompt {
		return h.errorReply(req.ID, analysis.InputError("unknown action "+strconv.Quote(req.Action)), start)
	}
	if err := analysis.CheckPrompt(req.Prompt); err != nil {
		return h.errorReply(req.ID, err, start)
	}
	if !h.limiter.Allow(caller) {
		return h.errorReply(req.ID, analysis.RateLimitedError(), start)
	}

	res, err := h.analyzer.Analyze(ctx, req.Prompt)
	if err != nil {
		return h.errorReply(req.ID, err, start)
	}
	return tag(req.ID, res.Response())
}

func (h *Handler) errorReply(id string, err error, start time.Time) any {
	resp, status := analysis.NewErrorResponse(err, time.Since(start))
	if status >= http.StatusInternalServerError {
		h.logger.Warn("websocket analysis failed",
			zap.String("kind", resp.Kind),
			zap.Int("tokens", resp.TokenCount),
			zap.Error(err),
		)
	}
	return tag(id, resp)
}
