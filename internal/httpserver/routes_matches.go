// internal/httpserver/routes_matches.go
//
// HTTP routes for match listings, mounted under /matches:
//   - GET /matches/live        → snapshots of running matches
//   - GET /matches/leaderboard → top players by wins (?limit=, default 20)
//   - GET /matches/mine        → recent results for the signed-in user (auth)

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// mountMatches registers all /matches routes.
func (s *Server) mountMatches(r chi.Router) {
	r.Route("/matches", func(r chi.Router) {
		r.Get("/live", s.handleLive)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.With(s.requireAuth()).Get("/mine", s.handleMine)
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.live.List(r.Context())
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"waiting": s.lobby.Waiting(), "matches": snaps})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.history.Leaderboard(r.Context(), queryLimit(r, 20))
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"top": rows})
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	rows, err := s.history.Recent(r.Context(), currentUser(r).ID, queryLimit(r, 50))
	if err != nil {
		log.Error().Err(err).Msg("recent matches")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// queryLimit reads ?limit=, clamped to [1,100].
func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > 100 {
		return 100
	}
	return n
}
