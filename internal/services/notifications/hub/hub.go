// Package hub fans notification copy out to websocket feed subscribers.
//
// The hub is transport only. It authenticates the upgrade, tracks which
// peers joined which game feed, and forwards pre-rendered copy. Inbox
// reads and membership checks are delegated to the Directory so the hub
// never touches storage or the render catalogs directly.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/warroom/internal/services/notifications/storage"
	"golang.org/x/net/websocket"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	defaultInboxPageSize = 20
	maxInboxPageSize     = 100

	defaultCopyLocale = "en"
)

// Authorizer resolves a bearer token presented at upgrade time to a user id.
type Authorizer interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// Welcome is the context sent back when a peer joins a game feed.
type Welcome struct {
	GameName    string
	UnreadCount int
}

// InboxItem is one stored notification rendered for a locale.
type InboxItem struct {
	NotificationID string
	GameID         string
	Kind           string
	Title          string
	Body           string
	CreatedAt      time.Time
	Read           bool
}

// InboxPage is one page of a recipient's inbox, newest first.
type InboxPage struct {
	Items         []InboxItem
	NextPageToken string
}

// Directory answers membership and inbox questions for connected peers.
type Directory interface {
	IsGameMember(ctx context.Context, gameID, userID string) (bool, error)
	JoinWelcome(ctx context.Context, gameID, userID string) (Welcome, error)
	ListInbox(ctx context.Context, userID, locale string, pageSize int, pageToken string) (InboxPage, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

// Copy is localized title and body text for one feed event.
type Copy struct {
	Title string
	Body  string
}

// FeedEvent is one notification pushed to live subscribers. Copy holds the
// pre-rendered text per catalog locale so the hub never renders.
type FeedEvent struct {
	NotificationID string
	GameID         string
	Kind           string
	CreatedAt      time.Time
	Copy           map[string]Copy
}

func (e FeedEvent) copyFor(locale string) Copy {
	if c, ok := e.Copy[locale]; ok {
		return c
	}
	if c, ok := e.Copy[defaultCopyLocale]; ok {
		return c
	}
	for _, c := range e.Copy {
		return c
	}
	return Copy{}
}

// Config carries the hub collaborators.
type Config struct {
	Authorizer Authorizer
	Directory  Directory
	// MatchLocale maps a client locale token to a copy locale. Nil keeps
	// the token as sent, with empty tokens resolving to English.
	MatchLocale func(locale string) string
	// Now is the clock used for server timestamps. Nil means time.Now.
	Now func() time.Time
}

// Hub owns the live feed rooms for one notifications process.
type Hub struct {
	cfg   Config
	mu    sync.Mutex
	games map[string]*gameFeed
}

// New creates an empty hub.
func New(cfg Config) *Hub {
	return &Hub{
		cfg:   cfg,
		games: make(map[string]*gameFeed),
	}
}

// Handler returns the feed routes. GET /up reports liveness and GET /ws
// upgrades to the frame protocol after bearer-token authentication.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(h.handleConn)

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if h.cfg.Authorizer == nil {
			http.Error(w, "feed auth is not configured", http.StatusServiceUnavailable)
			return
		}

		accessToken := accessTokenFromRequest(r)
		if accessToken == "" {
			log.Printf("notifications: feed unauthorized: missing bearer token for remote=%s", r.RemoteAddr)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		userID, err := h.cfg.Authorizer.Authenticate(r.Context(), accessToken)
		if err != nil || strings.TrimSpace(userID) == "" {
			if err != nil {
				log.Printf("notifications: feed unauthorized: token rejected for remote=%s err=%v", r.RemoteAddr, err)
			}
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), feedUserIDContextKey{}, strings.TrimSpace(userID))
		wsHandler.ServeHTTP(w, r.WithContext(ctx))
	})

	return mux
}

// Publish pushes one event to the subscribed peers of a game whose user id
// is in userIDs. It returns how many peers the event was written to.
func (h *Hub) Publish(gameID string, userIDs []string, event FeedEvent) int {
	feed := h.feedIfPresent(strings.TrimSpace(gameID))
	if feed == nil {
		return 0
	}

	targets := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			targets[trimmed] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return 0
	}

	delivered := 0
	for _, peer := range feed.snapshot() {
		if _, ok := targets[peer.userID]; !ok {
			continue
		}
		text := event.copyFor(peer.currentLocale())
		frame := feedFrame{
			Type: "feed.notification",
			Payload: mustJSON(notificationEnvelope{Notification: feedNotification{
				NotificationID: event.NotificationID,
				GameID:         event.GameID,
				Kind:           event.Kind,
				Title:          text.Title,
				Body:           text.Body,
				CreatedAt:      event.CreatedAt.UTC().Format(time.RFC3339),
			}}),
		}
		if err := peer.writeFrame(frame); err == nil {
			delivered++
		}
	}
	return delivered
}

type feedUserIDContextKey struct{}

// accessTokenFromRequest accepts the Authorization header or, for clients
// that cannot set headers on the upgrade request, an access_token query
// parameter.
func accessTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		if token := strings.TrimSpace(after); token != "" {
			return token
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

func (h *Hub) handleConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	userID := ""
	ctx := context.Background()
	if request := conn.Request(); request != nil {
		ctx = request.Context()
		if resolved, ok := ctx.Value(feedUserIDContextKey{}).(string); ok {
			userID = strings.TrimSpace(resolved)
		}
	}
	if userID == "" {
		return
	}

	peer := newFeedPeer(json.NewEncoder(conn), userID)
	session := &feedSession{peer: peer}
	defer func() {
		if feed := session.currentFeed(); feed != nil {
			feed.leave(peer)
		}
	}()

	decoder := json.NewDecoder(conn)
	windowStart := h.now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame feedFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeFeedError(peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := h.now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeFeedError(peer, frame.RequestID, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case "feed.join":
			h.handleJoinFrame(ctx, session, frame)
		case "feed.inbox":
			h.handleInboxFrame(ctx, session, frame)
		case "feed.read":
			h.handleReadFrame(ctx, session, frame)
		default:
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func (h *Hub) handleJoinFrame(ctx context.Context, session *feedSession, frame feedFrame) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeFeedError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid join payload")
		return
	}

	gameID := strings.TrimSpace(payload.GameID)
	if gameID == "" {
		_ = writeFeedError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "game_id is required")
		return
	}
	session.peer.setLocale(h.matchLocale(payload.Locale))

	if h.cfg.Directory == nil {
		_ = writeFeedError(session.peer, frame.RequestID, "UNAVAILABLE", "feed directory is not configured")
		return
	}

	member, err := h.cfg.Directory.IsGameMember(ctx, gameID, session.peer.userID)
	if err != nil {
		log.Printf("notifications: feed membership check failed user=%q game=%q err=%v", session.peer.userID, gameID, err)
		_ = writeFeedError(session.peer, frame.RequestID, "UNAVAILABLE", "game membership verification unavailable")
		return
	}
	if !member {
		_ = writeFeedError(session.peer, frame.RequestID, "FORBIDDEN", "an active seat is required for the game feed")
		return
	}

	welcome, err := h.cfg.Directory.JoinWelcome(ctx, gameID, session.peer.userID)
	if err != nil {
		log.Printf("notifications: feed welcome lookup failed user=%q game=%q err=%v", session.peer.userID, gameID, err)
		_ = writeFeedError(session.peer, frame.RequestID, "UNAVAILABLE", "game feed context unavailable")
		return
	}

	feed := h.feed(gameID)
	previous := session.setFeed(feed)
	if previous != nil && previous != feed {
		previous.leave(session.peer)
	}
	feed.join(session.peer)

	_ = session.peer.writeFrame(feedFrame{
		Type:      "feed.joined",
		RequestID: frame.RequestID,
		Payload: mustJSON(joinedPayload{
			GameID:      gameID,
			GameName:    welcome.GameName,
			UnreadCount: welcome.UnreadCount,
			ServerTime:  h.now().UTC().Format(time.RFC3339),
		}),
	})
}

func (h *Hub) handleInboxFrame(ctx context.Context, session *feedSession, frame feedFrame) {
	var payload inboxPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeFeedError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid inbox payload")
		return
	}

	if h.cfg.Directory == nil {
		_ = writeFeedError(session.peer, frame.RequestID, "UNAVAILABLE", "feed directory is not configured")
		return
	}

	pageSize := payload.PageSize
	if pageSize <= 0 {
		pageSize = defaultInboxPageSize
	}
	if pageSize > maxInboxPageSize {
		pageSize = maxInboxPageSize
	}
	locale := session.peer.currentLocale()
	if strings.TrimSpace(payload.Locale) != "" {
		locale = h.matchLocale(payload.Locale)
	}

	page, err := h.cfg.Directory.ListInbox(ctx, session.peer.userID, locale, pageSize, strings.TrimSpace(payload.PageToken))
	if err != nil {
		log.Printf("notifications: inbox list failed user=%q err=%v", session.peer.userID, err)
		_ = writeFeedError(session.peer, frame.RequestID, "UNAVAILABLE", "inbox unavailable")
		return
	}

	for _, item := range page.Items {
		_ = session.peer.writeFrame(feedFrame{
			Type: "feed.notification",
			Payload: mustJSON(notificationEnvelope{Notification: feedNotification{
				NotificationID: item.NotificationID,
				GameID:         item.GameID,
				Kind:           item.Kind,
				Title:          item.Title,
				Body:           item.Body,
				CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
				Read:           item.Read,
			}}),
		})
	}
	_ = session.peer.writeFrame(feedFrame{
		Type:      "feed.ack",
		RequestID: frame.RequestID,
		Payload: mustJSON(ackEnvelope{Result: ackResult{
			Status:        "ok",
			Count:         len(page.Items),
			NextPageToken: page.NextPageToken,
		}}),
	})
}

func (h *Hub) handleReadFrame(ctx context.Context, session *feedSession, frame feedFrame) {
	var payload readPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeFeedError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid read payload")
		return
	}

	notificationID := strings.TrimSpace(payload.NotificationID)
	if notificationID == "" {
		_ = writeFeedError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "notification_id is required")
		return
	}

	if h.cfg.Directory == nil {
		_ = writeFeedError(session.peer, frame.RequestID, "UNAVAILABLE", "feed directory is not configured")
		return
	}

	if err := h.cfg.Directory.MarkRead(ctx, session.peer.userID, notificationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = writeFeedError(session.peer, frame.RequestID, "NOT_FOUND", "notification not found")
			return
		}
		log.Printf("notifications: mark read failed user=%q notification=%q err=%v", session.peer.userID, notificationID, err)
		_ = writeFeedError(session.peer, frame.RequestID, "UNAVAILABLE", "inbox unavailable")
		return
	}

	_ = session.peer.writeFrame(feedFrame{
		Type:      "feed.ack",
		RequestID: frame.RequestID,
		Payload: mustJSON(ackEnvelope{Result: ackResult{
			Status:         "ok",
			NotificationID: notificationID,
		}}),
	})
}

func (h *Hub) matchLocale(locale string) string {
	trimmed := strings.TrimSpace(locale)
	if h.cfg.MatchLocale != nil {
		return h.cfg.MatchLocale(trimmed)
	}
	if trimmed == "" {
		return defaultCopyLocale
	}
	return trimmed
}

func (h *Hub) now() time.Time {
	if h.cfg.Now != nil {
		return h.cfg.Now()
	}
	return time.Now()
}

func (h *Hub) feed(gameID string) *gameFeed {
	h.mu.Lock()
	defer h.mu.Unlock()

	feed, ok := h.games[gameID]
	if ok {
		return feed
	}

	feed = newGameFeed(gameID)
	h.games[gameID] = feed
	return feed
}

func (h *Hub) feedIfPresent(gameID string) *gameFeed {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.games[gameID]
}

type feedFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type joinPayload struct {
	GameID string `json:"game_id"`
	Locale string `json:"locale,omitempty"`
}

type joinedPayload struct {
	GameID      string `json:"game_id"`
	GameName    string `json:"game_name"`
	UnreadCount int    `json:"unread_count"`
	ServerTime  string `json:"server_time"`
}

type inboxPayload struct {
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
	Locale    string `json:"locale,omitempty"`
}

type readPayload struct {
	NotificationID string `json:"notification_id"`
}

type notificationEnvelope struct {
	Notification feedNotification `json:"notification"`
}

type feedNotification struct {
	NotificationID string `json:"notification_id"`
	GameID         string `json:"game_id"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	CreatedAt      string `json:"created_at"`
	Read           bool   `json:"read,omitempty"`
}

type ackEnvelope struct {
	Result ackResult `json:"result"`
}

type ackResult struct {
	Status         string `json:"status"`
	Count          int    `json:"count,omitempty"`
	NextPageToken  string `json:"next_page_token,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
}

type feedErrorEnvelope struct {
	Error feedError `json:"error"`
}

type feedError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type feedSession struct {
	mu   sync.Mutex
	feed *gameFeed
	peer *feedPeer
}

func (s *feedSession) setFeed(next *gameFeed) *gameFeed {
	s.mu.Lock()
	previous := s.feed
	s.feed = next
	s.mu.Unlock()
	return previous
}

func (s *feedSession) currentFeed() *gameFeed {
	s.mu.Lock()
	feed := s.feed
	s.mu.Unlock()
	return feed
}

type feedPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
	userID  string
	locale  string
}

func newFeedPeer(encoder *json.Encoder, userID string) *feedPeer {
	return &feedPeer{
		encoder: encoder,
		userID:  userID,
		locale:  defaultCopyLocale,
	}
}

func (p *feedPeer) writeFrame(frame feedFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

func (p *feedPeer) setLocale(locale string) {
	p.mu.Lock()
	p.locale = locale
	p.mu.Unlock()
}

func (p *feedPeer) currentLocale() string {
	p.mu.Lock()
	locale := p.locale
	p.mu.Unlock()
	return locale
}

type gameFeed struct {
	mu          sync.Mutex
	gameID      string
	subscribers map[*feedPeer]struct{}
}

func newGameFeed(gameID string) *gameFeed {
	return &gameFeed{
		gameID:      gameID,
		subscribers: make(map[*feedPeer]struct{}),
	}
}

func (f *gameFeed) join(peer *feedPeer) {
	f.mu.Lock()
	f.subscribers[peer] = struct{}{}
	f.mu.Unlock()
}

func (f *gameFeed) leave(peer *feedPeer) {
	f.mu.Lock()
	delete(f.subscribers, peer)
	f.mu.Unlock()
}

func (f *gameFeed) snapshot() []*feedPeer {
	f.mu.Lock()
	peers := make([]*feedPeer, 0, len(f.subscribers))
	for peer := range f.subscribers {
		peers = append(peers, peer)
	}
	f.mu.Unlock()
	return peers
}

func writeFeedError(peer *feedPeer, requestID string, code string, message string) error {
	return peer.writeFrame(feedFrame{
		Type:      "feed.error",
		RequestID: requestID,
		Payload: mustJSON(feedErrorEnvelope{
			Error: feedError{
				Code:      code,
				Message:   message,
				Retryable: false,
			},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("notifications: failed to marshal feed frame payload: %v", err)
		return nil
	}
	return b
}
