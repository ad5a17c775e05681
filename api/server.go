package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/snake-game-server/game/engine"
	"github.com/wricardo/snake-game-server/game/keys"
	"github.com/wricardo/snake-game-server/game/service"
	"github.com/wricardo/snake-game-server/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service  service.GameService
	hub      *websocket.Hub
	sessions *SessionStore
	router   *mux.Router
	handler  http.Handler
}

// NewServer creates a new API server. hub may be nil, in which case
// moves are not broadcast and /ws is unavailable.
func NewServer(gameService service.GameService, hub *websocket.Hub, sessions *SessionStore) *Server {
	if sessions == nil {
		sessions = NewSessionStore("", 0)
	}
	s := &Server{
		service:  gameService,
		hub:      hub,
		sessions: sessions,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	s.handler = middleware(s.router)
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/snake", s.handleIssueKey).Methods("GET")

	// Game lifecycle
	s.router.HandleFunc("/snake/start", s.handleStart).Methods("POST")
	s.router.HandleFunc("/snake/move", s.handleMove).Methods("POST")
	s.router.HandleFunc("/snake/games", s.handleListGames).Methods("GET")
	s.router.HandleFunc("/snake/games/{id}", s.handleGetGame).Methods("GET")
	s.router.HandleFunc("/snake/games/{id}", s.handleDeleteGame).Methods("DELETE")

	// Configuration
	s.router.HandleFunc("/snake/configs", s.handleListConfigs).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Mount attaches an extra handler, such as the MCP endpoint, at path
func (s *Server) Mount(path string, h http.Handler, methods ...string) {
	route := s.router.Handle(path, h)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error": message,
		"code":  status,
	})
}

// respondDecodeError rejects malformed JSON with 400 and well-formed JSON
// carrying a field of the wrong type with 422
func respondDecodeError(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
		return
	}
	respondError(w, http.StatusBadRequest, "Invalid request body")
}

// respondServiceError maps service and engine errors to HTTP statuses.
// Unexpected errors are logged and reported without detail.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		respondError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, engine.ErrInvalidDirection):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrConfigUnavailable):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Session key

func (s *Server) handleIssueKey(w http.ResponseWriter, r *http.Request) {
	count, err := keys.ParseCount(r.URL.Query().Get("count"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.sessions.Issue(w, keys.Derive(count)); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Session key stored. Start a game with POST /snake/start",
		"session": "ready",
	})
}

// Game handlers

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}

	// The body is optional; an empty one starts the default ruleset
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondDecodeError(w, err)
		return
	}

	info, err := s.service.StartGame(r.Context(), req.ConfigID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("game_id", info.ID).Str("config", info.ConfigName).Msg("game started")

	respondJSON(w, http.StatusOK, info.State)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID    string `json:"game_id"`
		Direction string `json:"direction"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	// A missing or invalid cookie simply means no key was stored
	sessionKey, _ := s.sessions.Key(r)

	result, err := s.service.Move(r.Context(), service.MoveRequest{
		GameID:     req.GameID,
		Direction:  req.Direction,
		SessionKey: sessionKey,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil && !result.NoOp {
		s.hub.PublishMove(result.Snapshot, result.Won)
	}

	if len(result.Snake) > 0 {
		log.Info().
			Str("game_id", result.GameID).
			Str("direction", string(result.Direction)).
			Stringer("head", result.Snake[0]).
			Int("score", result.Score).
			Str("status", string(result.Status)).
			Bool("ate", result.Ate).
			Bool("won", result.Won).
			Msg("move")
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	info, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info.State)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if err := s.service.DeleteGame(r.Context(), gameID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Game " + gameID + " deleted",
	})
}

// Configuration handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

// WebSocket handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "live updates disabled")
		return
	}

	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "game_id parameter required")
		return
	}

	info, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// The current board goes to this client only, so it can draw immediately
	s.hub.ServeWS(w, r, gameID, &info.State)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{
		"ok": true,
	})
}
