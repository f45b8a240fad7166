package hub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/warroom/internal/services/notifications/storage"
	"golang.org/x/net/websocket"
)

type feedTestFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type feedTestJoined struct {
	GameID      string `json:"game_id"`
	GameName    string `json:"game_name"`
	UnreadCount int    `json:"unread_count"`
	ServerTime  string `json:"server_time"`
}

type feedTestNotification struct {
	Notification struct {
		NotificationID string `json:"notification_id"`
		GameID         string `json:"game_id"`
		Kind           string `json:"kind"`
		Title          string `json:"title"`
		Body           string `json:"body"`
		CreatedAt      string `json:"created_at"`
		Read           bool   `json:"read"`
	} `json:"notification"`
}

type feedTestAck struct {
	Result struct {
		Status         string `json:"status"`
		Count          int    `json:"count"`
		NextPageToken  string `json:"next_page_token"`
		NotificationID string `json:"notification_id"`
	} `json:"result"`
}

type fakeAuthorizer struct {
	users   map[string]string
	authErr error
}

func (f fakeAuthorizer) Authenticate(_ context.Context, token string) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	if f.users != nil {
		return f.users[token], nil
	}
	return "user-1", nil
}

type fakeDirectory struct {
	memberByGame map[string]bool
	memberErr    error
	welcome      Welcome
	welcomeErr   error
	inbox        InboxPage
	inboxErr     error
	readErr      error

	mu            sync.Mutex
	lastLocale    string
	lastPageSize  int
	lastPageToken string
	readIDs       []string
}

func (f *fakeDirectory) IsGameMember(_ context.Context, gameID, _ string) (bool, error) {
	if f.memberErr != nil {
		return false, f.memberErr
	}
	if f.memberByGame != nil {
		return f.memberByGame[gameID], nil
	}
	return true, nil
}

func (f *fakeDirectory) JoinWelcome(_ context.Context, _, _ string) (Welcome, error) {
	if f.welcomeErr != nil {
		return Welcome{}, f.welcomeErr
	}
	return f.welcome, nil
}

func (f *fakeDirectory) ListInbox(_ context.Context, _, locale string, pageSize int, pageToken string) (InboxPage, error) {
	f.mu.Lock()
	f.lastLocale = locale
	f.lastPageSize = pageSize
	f.lastPageToken = pageToken
	f.mu.Unlock()
	if f.inboxErr != nil {
		return InboxPage{}, f.inboxErr
	}
	return f.inbox, nil
}

func (f *fakeDirectory) MarkRead(_ context.Context, userID, notificationID string) error {
	f.mu.Lock()
	f.readIDs = append(f.readIDs, userID+"/"+notificationID)
	f.mu.Unlock()
	return f.readErr
}

func (f *fakeDirectory) recordedPage() (string, int, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLocale, f.lastPageSize, f.lastPageToken
}

func (f *fakeDirectory) recordedReads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.readIDs...)
}

func newTestHub(t *testing.T, cfg Config) (*Hub, *httptest.Server) {
	t.Helper()
	if cfg.Authorizer == nil {
		cfg.Authorizer = fakeAuthorizer{}
	}
	h := New(cfg)
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)
	return h, srv
}

func dialFeed(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	conn, err := dialFeedErr(srv, token)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func dialFeedErr(srv *httptest.Server, token string) (*websocket.Conn, error) {
	path := "/ws"
	if token != "" {
		path += "?access_token=" + token
	}
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.Dial(wsURL, "", srv.URL)
}

func writeFeedFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := json.NewEncoder(conn).Encode(frame); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
}

func readFeedFrame(t *testing.T, conn *websocket.Conn) feedTestFrame {
	t.Helper()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	var got feedTestFrame
	if err := json.NewDecoder(conn).Decode(&got); err != nil {
		t.Fatalf("decode server frame: %v", err)
	}
	return got
}

func joinGame(t *testing.T, conn *websocket.Conn, gameID string, locale string) feedTestJoined {
	t.Helper()
	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.join",
		"request_id": "req-join-1",
		"payload": map[string]any{
			"game_id": gameID,
			"locale":  locale,
		},
	})
	got := readFeedFrame(t, conn)
	if got.Type != "feed.joined" {
		t.Fatalf("frame type = %q, want %q (payload %s)", got.Type, "feed.joined", string(got.Payload))
	}
	var joined feedTestJoined
	if err := json.Unmarshal(got.Payload, &joined); err != nil {
		t.Fatalf("decode joined payload: %v", err)
	}
	return joined
}

func TestFeedUpEndpointRespondsOK(t *testing.T) {
	_, srv := newTestHub(t, Config{Directory: &fakeDirectory{}})

	resp, err := http.Get(srv.URL + "/up")
	if err != nil {
		t.Fatalf("get /up: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "OK" {
		t.Fatalf("body = %q, want %q", string(body), "OK")
	}
}

func TestFeedEndpointRequiresToken(t *testing.T) {
	_, srv := newTestHub(t, Config{Directory: &fakeDirectory{}})

	conn, err := dialFeedErr(srv, "")
	if conn != nil {
		_ = conn.Close()
	}
	if err == nil {
		t.Fatal("expected websocket dial error")
	}
	if !strings.Contains(err.Error(), "bad status") {
		t.Fatalf("dial error = %v, expected bad status", err)
	}
}

func TestFeedEndpointRejectsBadToken(t *testing.T) {
	_, srv := newTestHub(t, Config{
		Authorizer: fakeAuthorizer{authErr: errors.New("expired")},
		Directory:  &fakeDirectory{},
	})

	conn, err := dialFeedErr(srv, "token-1")
	if conn != nil {
		_ = conn.Close()
	}
	if err == nil {
		t.Fatal("expected websocket dial error")
	}
}

func TestFeedJoinReturnsWelcome(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	_, srv := newTestHub(t, Config{
		Directory: &fakeDirectory{welcome: Welcome{GameName: "Strait Crisis", UnreadCount: 2}},
		Now:       func() time.Time { return now },
	})
	conn := dialFeed(t, srv, "token-1")

	joined := joinGame(t, conn, "game-1", "en")

	if joined.GameID != "game-1" {
		t.Fatalf("game_id = %q, want %q", joined.GameID, "game-1")
	}
	if joined.GameName != "Strait Crisis" {
		t.Fatalf("game_name = %q, want %q", joined.GameName, "Strait Crisis")
	}
	if joined.UnreadCount != 2 {
		t.Fatalf("unread_count = %d, want 2", joined.UnreadCount)
	}
	if joined.ServerTime != "2026-03-14T12:00:00Z" {
		t.Fatalf("server_time = %q, want frozen clock", joined.ServerTime)
	}
}

func TestFeedJoinRequiresMembership(t *testing.T) {
	_, srv := newTestHub(t, Config{
		Directory: &fakeDirectory{memberByGame: map[string]bool{"game-1": false}},
	})
	conn := dialFeed(t, srv, "token-1")

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.join",
		"request_id": "req-join-1",
		"payload":    map[string]any{"game_id": "game-1"},
	})

	got := readFeedFrame(t, conn)
	if got.Type != "feed.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.error")
	}
	if !strings.Contains(string(got.Payload), "FORBIDDEN") {
		t.Fatalf("error payload = %s, expected FORBIDDEN", string(got.Payload))
	}
}

func TestFeedJoinMembershipLookupFailure(t *testing.T) {
	_, srv := newTestHub(t, Config{
		Directory: &fakeDirectory{memberErr: errors.New("store down")},
	})
	conn := dialFeed(t, srv, "token-1")

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.join",
		"request_id": "req-join-1",
		"payload":    map[string]any{"game_id": "game-1"},
	})

	got := readFeedFrame(t, conn)
	if got.Type != "feed.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.error")
	}
	if !strings.Contains(string(got.Payload), "UNAVAILABLE") {
		t.Fatalf("error payload = %s, expected UNAVAILABLE", string(got.Payload))
	}
}

func TestFeedInboxStreamsItemsAndAck(t *testing.T) {
	created := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{inbox: InboxPage{
		Items: []InboxItem{
			{NotificationID: "notif-2", GameID: "game-1", Kind: "player_joined", Title: "New player", Body: "Ada joined the game.", CreatedAt: created.Add(time.Minute)},
			{NotificationID: "notif-1", GameID: "game-1", Kind: "game_started", Title: "Game started", Body: "Strait Crisis is underway.", CreatedAt: created, Read: true},
		},
		NextPageToken: "notif-1",
	}}
	_, srv := newTestHub(t, Config{Directory: dir})
	conn := dialFeed(t, srv, "token-1")

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.inbox",
		"request_id": "req-inbox-1",
		"payload":    map[string]any{"page_size": 2},
	})

	first := readFeedFrame(t, conn)
	second := readFeedFrame(t, conn)
	if first.Type != "feed.notification" || second.Type != "feed.notification" {
		t.Fatalf("expected two feed.notification frames, got %q and %q", first.Type, second.Type)
	}
	var item feedTestNotification
	if err := json.Unmarshal(first.Payload, &item); err != nil {
		t.Fatalf("decode notification payload: %v", err)
	}
	if item.Notification.NotificationID != "notif-2" {
		t.Fatalf("first notification id = %q, want %q", item.Notification.NotificationID, "notif-2")
	}
	if item.Notification.Title != "New player" {
		t.Fatalf("first notification title = %q, want %q", item.Notification.Title, "New player")
	}

	ack := readFeedFrame(t, conn)
	if ack.Type != "feed.ack" {
		t.Fatalf("ack frame type = %q, want %q", ack.Type, "feed.ack")
	}
	var result feedTestAck
	if err := json.Unmarshal(ack.Payload, &result); err != nil {
		t.Fatalf("decode ack payload: %v", err)
	}
	if result.Result.Count != 2 {
		t.Fatalf("ack count = %d, want 2", result.Result.Count)
	}
	if result.Result.NextPageToken != "notif-1" {
		t.Fatalf("ack next_page_token = %q, want %q", result.Result.NextPageToken, "notif-1")
	}

	locale, pageSize, pageToken := dir.recordedPage()
	if locale != "en" {
		t.Fatalf("inbox locale = %q, want default %q", locale, "en")
	}
	if pageSize != 2 {
		t.Fatalf("inbox page size = %d, want 2", pageSize)
	}
	if pageToken != "" {
		t.Fatalf("inbox page token = %q, want empty", pageToken)
	}
}

func TestFeedInboxClampsPageSize(t *testing.T) {
	dir := &fakeDirectory{}
	_, srv := newTestHub(t, Config{Directory: dir})
	conn := dialFeed(t, srv, "token-1")

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.inbox",
		"request_id": "req-inbox-1",
		"payload":    map[string]any{},
	})
	if got := readFeedFrame(t, conn); got.Type != "feed.ack" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.ack")
	}
	if _, pageSize, _ := dir.recordedPage(); pageSize != defaultInboxPageSize {
		t.Fatalf("default page size = %d, want %d", pageSize, defaultInboxPageSize)
	}

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.inbox",
		"request_id": "req-inbox-2",
		"payload":    map[string]any{"page_size": 1000},
	})
	if got := readFeedFrame(t, conn); got.Type != "feed.ack" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.ack")
	}
	if _, pageSize, _ := dir.recordedPage(); pageSize != maxInboxPageSize {
		t.Fatalf("clamped page size = %d, want %d", pageSize, maxInboxPageSize)
	}
}

func TestFeedReadAcksAndDelegates(t *testing.T) {
	dir := &fakeDirectory{}
	_, srv := newTestHub(t, Config{Directory: dir})
	conn := dialFeed(t, srv, "token-1")

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.read",
		"request_id": "req-read-1",
		"payload":    map[string]any{"notification_id": "notif-2"},
	})

	ack := readFeedFrame(t, conn)
	if ack.Type != "feed.ack" {
		t.Fatalf("frame type = %q, want %q (payload %s)", ack.Type, "feed.ack", string(ack.Payload))
	}
	var result feedTestAck
	if err := json.Unmarshal(ack.Payload, &result); err != nil {
		t.Fatalf("decode ack payload: %v", err)
	}
	if result.Result.NotificationID != "notif-2" {
		t.Fatalf("ack notification_id = %q, want %q", result.Result.NotificationID, "notif-2")
	}

	reads := dir.recordedReads()
	if len(reads) != 1 || reads[0] != "user-1/notif-2" {
		t.Fatalf("recorded reads = %v, want one user-1/notif-2", reads)
	}
}

func TestFeedReadUnknownNotificationReturnsNotFound(t *testing.T) {
	dir := &fakeDirectory{readErr: storage.ErrNotFound}
	_, srv := newTestHub(t, Config{Directory: dir})
	conn := dialFeed(t, srv, "token-1")

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.read",
		"request_id": "req-read-1",
		"payload":    map[string]any{"notification_id": "missing"},
	})

	got := readFeedFrame(t, conn)
	if got.Type != "feed.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.error")
	}
	if !strings.Contains(string(got.Payload), "NOT_FOUND") {
		t.Fatalf("error payload = %s, expected NOT_FOUND", string(got.Payload))
	}
}

func TestFeedPublishDeliversLocalizedCopyToJoinedMember(t *testing.T) {
	h, srv := newTestHub(t, Config{Directory: &fakeDirectory{}})
	conn := dialFeed(t, srv, "token-1")
	joinGame(t, conn, "game-1", "pt-BR")

	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	delivered := h.Publish("game-1", []string{"user-1"}, FeedEvent{
		NotificationID: "notif-9",
		GameID:         "game-1",
		Kind:           "action_resolved",
		CreatedAt:      created,
		Copy: map[string]Copy{
			"en":    {Title: "Action resolved", Body: "The action resolved as a triumph."},
			"pt-BR": {Title: "Ação resolvida", Body: "A ação foi resolvida como um triunfo."},
		},
	})
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}

	got := readFeedFrame(t, conn)
	if got.Type != "feed.notification" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.notification")
	}
	var item feedTestNotification
	if err := json.Unmarshal(got.Payload, &item); err != nil {
		t.Fatalf("decode notification payload: %v", err)
	}
	if item.Notification.Title != "Ação resolvida" {
		t.Fatalf("title = %q, want localized pt-BR copy", item.Notification.Title)
	}
	if item.Notification.CreatedAt != "2026-03-14T12:00:00Z" {
		t.Fatalf("created_at = %q, want %q", item.Notification.CreatedAt, "2026-03-14T12:00:00Z")
	}
}

func TestFeedPublishSkipsPeersOutsideTargetList(t *testing.T) {
	authorizer := fakeAuthorizer{users: map[string]string{
		"token-a": "user-a",
		"token-b": "user-b",
	}}
	h, srv := newTestHub(t, Config{Authorizer: authorizer, Directory: &fakeDirectory{}})

	connA := dialFeed(t, srv, "token-a")
	connB := dialFeed(t, srv, "token-b")
	joinGame(t, connA, "game-1", "en")
	joinGame(t, connB, "game-1", "en")

	delivered := h.Publish("game-1", []string{"user-a"}, FeedEvent{
		NotificationID: "notif-1",
		GameID:         "game-1",
		Kind:           "voting_opened",
		CreatedAt:      time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Copy:           map[string]Copy{"en": {Title: "Voting open", Body: "Cast your vote."}},
	})
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}

	if got := readFeedFrame(t, connA); got.Type != "feed.notification" {
		t.Fatalf("target frame type = %q, want %q", got.Type, "feed.notification")
	}

	// The non-target peer's next frame must be its own ack, proving no
	// notification was queued ahead of it.
	writeFeedFrame(t, connB, map[string]any{
		"type":       "feed.read",
		"request_id": "req-read-1",
		"payload":    map[string]any{"notification_id": "notif-1"},
	})
	if got := readFeedFrame(t, connB); got.Type != "feed.ack" {
		t.Fatalf("non-target frame type = %q, want %q", got.Type, "feed.ack")
	}
}

func TestFeedPublishWithoutSubscribersReturnsZero(t *testing.T) {
	h, _ := newTestHub(t, Config{Directory: &fakeDirectory{}})

	delivered := h.Publish("game-1", []string{"user-1"}, FeedEvent{
		NotificationID: "notif-1",
		GameID:         "game-1",
		Kind:           "voting_opened",
		Copy:           map[string]Copy{"en": {Title: "Voting open"}},
	})
	if delivered != 0 {
		t.Fatalf("delivered = %d, want 0", delivered)
	}
}

func TestFeedJoinSwitchingGamesLeavesPreviousFeed(t *testing.T) {
	h, srv := newTestHub(t, Config{Directory: &fakeDirectory{}})
	conn := dialFeed(t, srv, "token-1")

	joinGame(t, conn, "game-1", "en")
	joinGame(t, conn, "game-2", "en")

	event := FeedEvent{
		NotificationID: "notif-1",
		Kind:           "voting_opened",
		Copy:           map[string]Copy{"en": {Title: "Voting open"}},
	}
	event.GameID = "game-1"
	if delivered := h.Publish("game-1", []string{"user-1"}, event); delivered != 0 {
		t.Fatalf("previous feed delivered = %d, want 0", delivered)
	}
	event.GameID = "game-2"
	if delivered := h.Publish("game-2", []string{"user-1"}, event); delivered != 1 {
		t.Fatalf("current feed delivered = %d, want 1", delivered)
	}

	if got := readFeedFrame(t, conn); got.Type != "feed.notification" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.notification")
	}
}

func TestFeedUnknownFrameTypeReturnsError(t *testing.T) {
	_, srv := newTestHub(t, Config{Directory: &fakeDirectory{}})
	conn := dialFeed(t, srv, "token-1")

	writeFeedFrame(t, conn, map[string]any{
		"type":       "feed.unknown",
		"request_id": "req-bad-1",
		"payload":    map[string]any{},
	})

	got := readFeedFrame(t, conn)
	if got.Type != "feed.error" {
		t.Fatalf("frame type = %q, want %q", got.Type, "feed.error")
	}
	if !strings.Contains(string(got.Payload), "INVALID_ARGUMENT") {
		t.Fatalf("error payload = %s, expected INVALID_ARGUMENT", string(got.Payload))
	}
}
