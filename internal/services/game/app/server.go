// Package app assembles the game service process: the sqlite stores, the
// engine, the notifications fan-out with its live feed hub, and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/warroom/internal/platform/timeouts"
	"github.com/louisbranch/warroom/internal/services/game/api/httpapi"
	"github.com/louisbranch/warroom/internal/services/game/domain/invite"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	gamesqlite "github.com/louisbranch/warroom/internal/services/game/storage/sqlite"
	notifapp "github.com/louisbranch/warroom/internal/services/notifications/app"
	"github.com/louisbranch/warroom/internal/services/notifications/hub"
	"github.com/louisbranch/warroom/internal/services/notifications/render"
	notifsqlite "github.com/louisbranch/warroom/internal/services/notifications/storage/sqlite"
	"github.com/louisbranch/warroom/internal/services/shared/roster"
)

// Server hosts the warroom game service.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *gamesqlite.Store
	notifStore *notifsqlite.Store
}

// New creates a configured game server listening on the provided address.
// Identity and join-grant key material come from the environment.
func New(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	store, err := openGameStore()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	notifStore, err := openNotificationsStore()
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	closeAll := func() {
		_ = listener.Close()
		_ = store.Close()
		_ = notifStore.Close()
	}

	identity, err := httpapi.LoadIdentityConfigFromEnv(nil)
	if err != nil {
		closeAll()
		return nil, err
	}
	auth, err := httpapi.NewTokenAuthenticator(identity)
	if err != nil {
		closeAll()
		return nil, err
	}
	grants, err := invite.LoadJoinGrantConfigFromEnv(nil)
	if err != nil {
		closeAll()
		return nil, err
	}

	seats := roster.New(store)
	directory, err := notifapp.NewDirectory(notifStore, seats, nil)
	if err != nil {
		closeAll()
		return nil, err
	}
	feed := hub.New(hub.Config{
		Authorizer:  auth,
		Directory:   directory,
		MatchLocale: render.MatchLocale,
	})
	notifier, err := notifapp.NewNotifier(notifapp.Config{
		Store:  notifStore,
		Roster: seats,
		Feed:   feed,
	})
	if err != nil {
		closeAll()
		return nil, err
	}

	engine, err := gameengine.New(gameengine.Config{
		Store:      store,
		Notifier:   notifier,
		JoinGrants: grants,
	})
	if err != nil {
		closeAll()
		return nil, err
	}

	api, err := httpapi.NewServer(httpapi.Config{
		Engine: engine,
		Auth:   auth,
	})
	if err != nil {
		closeAll()
		return nil, err
	}

	root := http.NewServeMux()
	root.Handle("/feed/", http.StripPrefix("/feed", feed.Handler()))
	root.Handle("/", api.Handler())

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           root,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:      store,
		notifStore: notifStore,
	}, nil
}

// Addr returns the listener address for the game server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a game server until the context ends.
func Run(ctx context.Context, port int) error {
	return RunWithAddr(ctx, fmt.Sprintf(":%d", port))
}

// RunWithAddr creates and serves a game server on an explicit address.
func RunWithAddr(ctx context.Context, addr string) error {
	server, err := New(addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the game server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStores()

	log.Printf("game server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			_ = s.httpServer.Close()
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func openGameStore() (*gamesqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("WARROOM_GAME_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "game.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := gamesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open game sqlite store: %w", err)
	}
	return store, nil
}

func openNotificationsStore() (*notifsqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("WARROOM_NOTIFICATIONS_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "notifications.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := notifsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open notifications sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStores() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close game store: %v", err)
		}
	}
	if s.notifStore != nil {
		if err := s.notifStore.Close(); err != nil {
			log.Printf("close notifications store: %v", err)
		}
	}
}
