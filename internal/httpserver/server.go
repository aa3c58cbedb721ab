// internal/httpserver/server.go
//
// HTTP server wiring for the settlers backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/board".
//   - Match socket (optional auth): GET /ws, paired into matches by the lobby.
//   - Match listings: mounted under /matches (routes_matches.go).
//   - Auth + profile/stat endpoints: /auth/*, /stats/me (auth.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - /ws sits outside the request timeout: the socket outlives the handler deadline.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/settlers/internal/board"
	"github.com/robalobadob/settlers/internal/config"
	"github.com/robalobadob/settlers/internal/history"
	"github.com/robalobadob/settlers/internal/match"
	"github.com/robalobadob/settlers/internal/store"
	"github.com/robalobadob/settlers/internal/transport/ws"
)

// Server bundles router, lobby, live-match registry and history store.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	lobby   *match.Lobby
	live    store.Store
	history *history.Store
	layout  *board.Layout
	costs   board.Costs
	up      *websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, layout *board.Layout, costs board.Costs, lobby *match.Lobby, live store.Store, hist *history.Store) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		lobby:   lobby,
		live:    live,
		history: hist,
		layout:  layout,
		costs:   costs,
	}
	s.up = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)   // zerolog access log
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// Match socket: optional auth, guests can play.
	s.r.With(s.withOptionalAuth()).Get("/ws", s.handleSocket)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"settlers-go","endpoints":["/health","/ws","/board","/matches/*","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		// Static board graph + build costs for clients.
		r.Get("/board", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"layout": s.layout, "costs": s.costs})
		})

		s.mountMatches(r)
		s.mountAuthRoutes(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------- socket ------------------------------------

// handleSocket upgrades and hands the connection to the lobby until it closes.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	uid := ""
	if me := currentUser(r); me != nil {
		uid = me.ID
	}
	opts := ws.Options{
		SendBuffer: s.cfg.WSSendBuffer,
		Rate:       rate.Limit(s.cfg.WSMessagesPerSecond),
		Burst:      s.cfg.WSBurst,
		OnLimited: func(c *ws.Conn) {
			if err := c.Send(match.IncorrectRequest("rate limited")); err != nil {
				log.Warn().Err(err).Str("conn", c.ID()).Msg("delivery failed")
			}
		},
	}
	if err := ws.Serve(s.up, w, r, uid, lobbyHandler{s.lobby}, opts); err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
	}
}

// lobbyHandler adapts the lobby to transport events.
type lobbyHandler struct{ l *match.Lobby }

func (h lobbyHandler) Open(c *ws.Conn)                               { h.l.Open(c) }
func (h lobbyHandler) Message(c *ws.Conn, text bool, payload []byte) { h.l.Message(c, text, payload) }
func (h lobbyHandler) Close(c *ws.Conn)                              { h.l.Close(c) }

// checkOrigin accepts same-host requests, non-browser clients and CLIENT_ORIGIN.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("req", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}
