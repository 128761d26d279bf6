package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"liquidhire/internal/config"
	"liquidhire/internal/interview"
	"liquidhire/internal/models"
	"liquidhire/internal/utils"
)

type recordingStore struct {
	mu    sync.Mutex
	saved []*models.Interview
}

func (s *recordingStore) SaveInterview(_ context.Context, rec *models.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, rec)
	return nil
}

func (s *recordingStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *recordingStore) record(i int) *models.Interview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[i]
}

// stubAPI serves the chat and scoring endpoints the live session rides on.
func stubAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, models.ChatResponse{NextQuestion: "Tell me about yourself."})
	})
	mux.HandleFunc("/api/end-interview", func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, models.EndInterviewResponse{
			Score:      70,
			Summary:    "Solid fundamentals.",
			JSONReport: []models.QuestionFeedback{},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func signTestToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "7",
		"username": "candidate",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type liveFixture struct {
	registry *Registry
	store    *recordingStore
	ws       *websocket.Conn
}

// dialLive stands up the full live handler behind httptest and dials it
// with the token riding the query parameter, the way browsers do.
func dialLive(t *testing.T) *liveFixture {
	t.Helper()
	_, client := setupTestRedis(t)
	registry := NewRegistry(client, time.Minute)
	store := &recordingStore{}
	api := stubAPI(t)

	cfg := &config.Config{JWTSecret: "test-secret"}
	h := NewHandler(cfg, interview.NewAPIClient(api.URL), store, registry, nil)

	srv := httptest.NewServer(http.HandlerFunc(h.Live))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + signTestToken(t, cfg.JWTSecret)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })

	return &liveFixture{registry: registry, store: store, ws: ws}
}

// readUntil drains server messages until one of the wanted type arrives.
func readUntil(t *testing.T, ws *websocket.Conn, msgType string) ServerMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = ws.SetReadDeadline(deadline)
		var msg ServerMessage
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("read waiting for %q: %v", msgType, err)
		}
		if msg.Type == MsgError {
			t.Fatalf("server error waiting for %q: %s", msgType, msg.Message)
		}
		if msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("no %q message before deadline", msgType)
	return ServerMessage{}
}

func waitForCond(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func (fx *liveFixture) activeSessions(t *testing.T) []string {
	t.Helper()
	active, err := fx.registry.Active(context.Background())
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	return active
}

func startSession(t *testing.T, fx *liveFixture) {
	t.Helper()
	err := fx.ws.WriteJSON(ClientEvent{
		Type:       EventStart,
		JobRole:    "Backend Engineer",
		ResumeText: "Five years of Go.",
	})
	if err != nil {
		t.Fatalf("write start: %v", err)
	}
	readUntil(t, fx.ws, MsgSpeak)
}

func TestLiveDisconnectCleansUpSession(t *testing.T) {
	fx := dialLive(t)
	startSession(t, fx)

	if got := fx.activeSessions(t); len(got) != 1 {
		t.Fatalf("active sessions = %v, want one", got)
	}

	// the browser drops; the read loop must tear the session down
	_ = fx.ws.Close()

	waitForCond(t, func() bool { return len(fx.activeSessions(t)) == 0 })

	// no end event ran, so nothing was scored or saved
	if n := fx.store.saveCount(); n != 0 {
		t.Fatalf("saved records = %d, want 0 after plain disconnect", n)
	}
}

func TestLiveEndSavesRecordOnce(t *testing.T) {
	fx := dialLive(t)
	startSession(t, fx)

	if err := fx.ws.WriteJSON(ClientEvent{Type: EventEnd}); err != nil {
		t.Fatalf("write end: %v", err)
	}
	msg := readUntil(t, fx.ws, MsgEnded)
	if msg.Score == nil || *msg.Score != 70 {
		t.Fatalf("ended score = %v, want 70", msg.Score)
	}

	waitForCond(t, func() bool { return fx.store.saveCount() == 1 })
	rec := fx.store.record(0)
	if rec.UserID != 7 || rec.JobRole != "Backend Engineer" || rec.Score != 70 {
		t.Errorf("record = %+v", rec)
	}

	// the ended session leaves the registry, and the disconnect that
	// follows must not save a second record
	waitForCond(t, func() bool { return len(fx.activeSessions(t)) == 0 })
	_ = fx.ws.Close()
	time.Sleep(20 * time.Millisecond)
	if n := fx.store.saveCount(); n != 1 {
		t.Fatalf("saved records = %d, want 1", n)
	}
}
