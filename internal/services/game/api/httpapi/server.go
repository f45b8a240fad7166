package httpapi

import (
	"fmt"
	"log"
	"net/http"

	"github.com/louisbranch/warroom/internal/services/game/engine"
)

// Config defines startup inputs for the HTTP API.
type Config struct {
	Engine *engine.Engine
	Auth   TokenAuthenticator
	Logger *log.Logger
}

// Server translates HTTP requests into engine operations.
type Server struct {
	engine *engine.Engine
	auth   TokenAuthenticator
	logger *log.Logger
}

// NewServer builds a Server from the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("httpapi engine is required")
	}
	if cfg.Auth == nil {
		return nil, fmt.Errorf("httpapi authenticator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		engine: cfg.Engine,
		auth:   cfg.Auth,
		logger: logger,
	}, nil
}

// Handler returns the root HTTP handler. Everything under /v1/ requires a
// bearer identity; /healthz does not.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("POST /v1/games", s.handleCreateGame)
	api.HandleFunc("GET /v1/games", s.handleListGames)
	api.HandleFunc("GET /v1/games/{game}", s.handleGetGame)
	api.HandleFunc("DELETE /v1/games/{game}", s.handleDeleteGame)
	api.HandleFunc("PUT /v1/games/{game}/settings", s.handleUpdateSettings)
	api.HandleFunc("POST /v1/games/{game}/start", s.handleStartGame)
	api.HandleFunc("POST /v1/games/{game}/phase", s.handleTransitionPhase)
	api.HandleFunc("GET /v1/games/{game}/timeout", s.handleGetTimeoutStatus)
	api.HandleFunc("GET /v1/games/{game}/events", s.handleListAuditEvents)

	api.HandleFunc("POST /v1/games/{game}/join", s.handleJoinGame)
	api.HandleFunc("POST /v1/games/{game}/leave", s.handleLeaveGame)
	api.HandleFunc("POST /v1/games/{game}/rejoin", s.handleRejoinGame)

	api.HandleFunc("POST /v1/games/{game}/personas", s.handleCreatePersona)
	api.HandleFunc("POST /v1/games/{game}/personas/{persona}/claim", s.handleClaimPersona)
	api.HandleFunc("POST /v1/games/{game}/personas/release", s.handleReleasePersona)

	api.HandleFunc("POST /v1/games/{game}/invites", s.handleCreateInvite)
	api.HandleFunc("GET /v1/games/{game}/invites", s.handleListInvites)
	api.HandleFunc("POST /v1/games/{game}/invites/{invite}/grant", s.handleIssueJoinGrant)
	api.HandleFunc("POST /v1/games/{game}/invites/{invite}/redeem", s.handleRedeemInvite)

	api.HandleFunc("POST /v1/games/{game}/actions", s.handlePropose)
	api.HandleFunc("PATCH /v1/games/{game}/actions/{action}", s.handleEditAction)
	api.HandleFunc("POST /v1/games/{game}/arguments", s.handleAddArgument)
	api.HandleFunc("PATCH /v1/games/{game}/arguments/{argument}", s.handleEditArgument)
	api.HandleFunc("POST /v1/games/{game}/arguments/{argument}/strong", s.handleMarkArgumentStrong)
	api.HandleFunc("POST /v1/games/{game}/argumentation/complete", s.handleCompleteArgumentation)
	api.HandleFunc("POST /v1/games/{game}/argumentation/skip", s.handleSkipArgumentation)
	api.HandleFunc("POST /v1/games/{game}/votes", s.handleSubmitVote)
	api.HandleFunc("POST /v1/games/{game}/votes/skip", s.handleSkipVoting)
	api.HandleFunc("POST /v1/games/{game}/resolve", s.handleResolve)
	api.HandleFunc("POST /v1/games/{game}/review/complete", s.handleCompleteArbiterReview)
	api.HandleFunc("POST /v1/games/{game}/narration", s.handleSubmitNarration)
	api.HandleFunc("PATCH /v1/games/{game}/actions/{action}/narration", s.handleEditNarration)
	api.HandleFunc("POST /v1/games/{game}/next-action", s.handleSkipToNextAction)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.Handle("/v1/", s.requireIdentity(api))

	return chain(root,
		recoverPanic(s.logger),
		requestID(),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
